package services

import (
	"errors"
	"testing"

	"github.com/mir5/ipadmin/internal/server/models"

	"gorm.io/gorm"
)

func TestReserveEnforcesRequestCountCap(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	ledger := NewLedgerService()
	request := seedRequest(t, db, user.ID, vlan.ID, 2)
	request.SelectedPoolID = &pool.ID

	// 一次写入超出申请数量
	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, request, []uint32{addr(t, "10.0.0.1"), addr(t, "10.0.0.2"), addr(t, "10.0.0.3")}, false)
	})
	if err == nil {
		t.Fatal("超出申请数量的写入应失败")
	}

	// 分两次写入累计超出也应失败
	if err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, request, []uint32{addr(t, "10.0.0.1"), addr(t, "10.0.0.2")}, false)
	}); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, request, []uint32{addr(t, "10.0.0.3")}, false)
	})
	if err == nil {
		t.Fatal("累计超出申请数量的写入应失败")
	}
}

func TestReserveRevalidatesBeforeCommit(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	ledger := NewLedgerService()

	// 两个审批人基于同一台账快照各自算出了包含10.0.0.2的地址组
	reqA := seedRequest(t, db, user.ID, vlan.ID, 1)
	reqA.SelectedPoolID = &pool.ID
	reqB := seedRequest(t, db, user.ID, vlan.ID, 3)
	reqB.SelectedPoolID = &pool.ID

	// A先提交
	if err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, reqA, []uint32{addr(t, "10.0.0.2")}, false)
	}); err != nil {
		t.Fatalf("A提交失败: %v", err)
	}

	// B后提交，提交前的重新校验应发现冲突
	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, reqB, []uint32{addr(t, "10.0.0.1"), addr(t, "10.0.0.2"), addr(t, "10.0.0.3")}, false)
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("错误 = %v, 期望 ConflictError", err)
	}
	if conflict.Address != "10.0.0.2" {
		t.Fatalf("冲突地址 = %s, 期望 10.0.0.2", conflict.Address)
	}

	// 回滚后B名下无任何记录，10.0.0.1未被占用
	var count int64
	db.Model(&models.AssignedIP{}).Where("request_id = ?", reqB.ID).Count(&count)
	if count != 0 {
		t.Fatalf("回滚后B名下有 %d 条记录", count)
	}
	assigned, err := ledger.IsAssigned("10.0.0.1")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if assigned {
		t.Fatal("回滚后10.0.0.1不应被占用")
	}
}

func TestIsAssigned(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	ledger := NewLedgerService()
	request := seedRequest(t, db, user.ID, vlan.ID, 1)
	request.SelectedPoolID = &pool.ID

	if err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, request, []uint32{addr(t, "10.0.0.7")}, true)
	}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	assigned, err := ledger.IsAssigned("10.0.0.7")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if !assigned {
		t.Fatal("10.0.0.7应已被占用")
	}

	assigned, err = ledger.IsAssigned("10.0.0.8")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if assigned {
		t.Fatal("10.0.0.8不应被占用")
	}
}
