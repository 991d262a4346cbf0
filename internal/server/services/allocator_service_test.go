package services

import (
	"errors"
	"testing"

	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"
)

func TestReviewApproveManual(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	request := seedRequest(t, db, user.ID, vlan.ID, 3)

	if _, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   request.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      pool.ID,
		ManualStart: "10.0.0.20",
		ManualEnd:   "10.0.0.22",
	}); err != nil {
		t.Fatalf("手动审批失败: %v", err)
	}

	got := assignedAddresses(t, db, request.ID)
	want := []string{"10.0.0.20", "10.0.0.21", "10.0.0.22"}
	if len(got) != len(want) {
		t.Fatalf("分配数量 = %d, 期望 %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("分配地址[%d] = %s, 期望 %s", i, got[i], want[i])
		}
	}

	// 手动分配的记录带管理员指定标记
	var row models.AssignedIP
	if err := db.Where("request_id = ?", request.ID).First(&row).Error; err != nil {
		t.Fatalf("读取分配记录失败: %v", err)
	}
	if !row.AssignedByAdmin {
		t.Fatal("手动分配记录应标记assigned_by_admin")
	}
}

func TestManualInvalidRange(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	request := seedRequest(t, db, user.ID, vlan.ID, 3)

	// 起止倒置的地址段既非法又超出申请数量，应首先报范围非法
	_, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   request.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      pool.ID,
		ManualStart: "10.0.0.30",
		ManualEnd:   "10.0.0.20",
	})
	var rangeErr *ipaddr.InvalidRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("错误 = %v, 期望 InvalidRangeError", err)
	}
}

func TestManualOutOfPoolRange(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	request := seedRequest(t, db, user.ID, vlan.ID, 3)

	// 地址段合法但越界，且大小也不符：越界检查先于大小检查
	_, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   request.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      pool.ID,
		ManualStart: "10.0.0.48",
		ManualEnd:   "10.0.0.55",
	})
	if !errors.Is(err, ErrOutOfPoolRange) {
		t.Fatalf("错误 = %v, 期望 ErrOutOfPoolRange", err)
	}
}

func TestManualSizeMismatch(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	request := seedRequest(t, db, user.ID, vlan.ID, 3)

	_, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   request.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      pool.ID,
		ManualStart: "10.0.0.20",
		ManualEnd:   "10.0.0.24",
	})
	var sizeErr *SizeMismatchError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("错误 = %v, 期望 SizeMismatchError", err)
	}
	if sizeErr.Got != 5 || sizeErr.Want != 3 {
		t.Fatalf("大小错误内容 = %+v", sizeErr)
	}
}

func TestManualConflictReportsFirstAddress(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()

	// 预先占用10.0.0.21和10.0.0.22
	occupied := seedRequest(t, db, user.ID, vlan.ID, 2)
	if _, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   occupied.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      pool.ID,
		ManualStart: "10.0.0.21",
		ManualEnd:   "10.0.0.22",
	}); err != nil {
		t.Fatalf("预置分配失败: %v", err)
	}

	request := seedRequest(t, db, user.ID, vlan.ID, 4)
	_, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   request.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      pool.ID,
		ManualStart: "10.0.0.20",
		ManualEnd:   "10.0.0.23",
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("错误 = %v, 期望 ConflictError", err)
	}
	// 升序扫描，报告编号最小的冲突地址
	if conflict.Address != "10.0.0.21" {
		t.Fatalf("冲突地址 = %s, 期望 10.0.0.21", conflict.Address)
	}

	// 冲突审批不产生部分分配
	if got := assignedAddresses(t, db, request.ID); len(got) != 0 {
		t.Fatalf("冲突后存在 %d 条分配记录", len(got))
	}
	if reloadRequest(t, db, request.ID).Status != models.RequestStatusPending {
		t.Fatal("冲突后申请单应保持pending")
	}
}

func TestAutoAllocationScopeIsVlanWide(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)

	// 同一VLAN下两个相邻地址池
	poolA := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.10")
	seedPool(t, db, vlan.ID, "10.0.0.11", "10.0.0.20")

	rs := newTestRequestService()

	// 池A全部占满
	fill := seedRequest(t, db, user.ID, vlan.ID, 10)
	if _, err := rs.ReviewRequest(&ReviewInput{RequestID: fill.ID, AdminID: admin.ID, Approve: true, PoolID: poolA.ID}); err != nil {
		t.Fatalf("占满池A失败: %v", err)
	}

	// 再从池A申请应报容量不足，而不是分到池B的地址
	overflow := seedRequest(t, db, user.ID, vlan.ID, 1)
	_, err := rs.ReviewRequest(&ReviewInput{RequestID: overflow.ID, AdminID: admin.ID, Approve: true, PoolID: poolA.ID})
	var capacityErr *InsufficientCapacityError
	if !errors.As(err, &capacityErr) {
		t.Fatalf("错误 = %v, 期望 InsufficientCapacityError", err)
	}
}

func TestUniquenessIsGlobalAcrossVlans(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)

	// 两个VLAN下的地址池使用同一段地址
	vlanA := seedVlan(t, db, 100)
	vlanB := seedVlan(t, db, 200)
	poolA := seedPool(t, db, vlanA.ID, "10.0.0.1", "10.0.0.10")
	poolB := seedPool(t, db, vlanB.ID, "10.0.0.1", "10.0.0.10")

	rs := newTestRequestService()

	reqA := seedRequest(t, db, user.ID, vlanA.ID, 1)
	if _, err := rs.ReviewRequest(&ReviewInput{RequestID: reqA.ID, AdminID: admin.ID, Approve: true, PoolID: poolA.ID}); err != nil {
		t.Fatalf("VLAN A分配失败: %v", err)
	}

	// 唯一性跨VLAN全局生效: VLAN B手动指定同一地址应冲突
	reqB := seedRequest(t, db, user.ID, vlanB.ID, 1)
	_, err := rs.ReviewRequest(&ReviewInput{
		RequestID:   reqB.ID,
		AdminID:     admin.ID,
		Approve:     true,
		PoolID:      poolB.ID,
		ManualStart: "10.0.0.1",
		ManualEnd:   "10.0.0.1",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("错误 = %v, 期望 ConflictError", err)
	}
	if conflict.Address != "10.0.0.1" {
		t.Fatalf("冲突地址 = %s, 期望 10.0.0.1", conflict.Address)
	}
}
