package services

import (
	"testing"
)

func TestUpdateDescriptionOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice", false)
	stranger := seedUser(t, db, "bob", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	as := NewAssignmentService()

	request := seedRequest(t, db, owner.ID, vlan.ID, 1)
	if _, err := rs.ReviewRequest(&ReviewInput{RequestID: request.ID, AdminID: admin.ID, Approve: true, PoolID: pool.ID}); err != nil {
		t.Fatalf("审批失败: %v", err)
	}

	assignments, err := as.ListByRequest(request.ID)
	if err != nil || len(assignments) != 1 {
		t.Fatalf("分配记录 = %v, err = %v", assignments, err)
	}
	id := assignments[0].ID

	// 归属用户可以改
	if err := as.UpdateDescription(id, owner.ID, false, "办公电脑"); err != nil {
		t.Fatalf("归属用户更新备注失败: %v", err)
	}

	// 其他普通用户不可以改
	if err := as.UpdateDescription(id, stranger.ID, false, "别人的机器"); err == nil {
		t.Fatal("非归属用户不应允许更新备注")
	}

	// 管理员可以改任何记录
	if err := as.UpdateDescription(id, admin.ID, true, "已登记"); err != nil {
		t.Fatalf("管理员更新备注失败: %v", err)
	}

	refreshed, err := as.ListByRequest(request.ID)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if refreshed[0].Description != "已登记" {
		t.Fatalf("备注 = %q, 期望 已登记", refreshed[0].Description)
	}
}

func TestSetMonitored(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	as := NewAssignmentService()

	request := seedRequest(t, db, user.ID, vlan.ID, 1)
	if _, err := rs.ReviewRequest(&ReviewInput{RequestID: request.ID, AdminID: admin.ID, Approve: true, PoolID: pool.ID}); err != nil {
		t.Fatalf("审批失败: %v", err)
	}

	assignments, _ := as.ListByRequest(request.ID)
	id := assignments[0].ID

	if err := as.SetMonitored(id, true); err != nil {
		t.Fatalf("设置监控标记失败: %v", err)
	}
	refreshed, _ := as.ListByRequest(request.ID)
	if !refreshed[0].IsMonitored {
		t.Fatal("监控标记未生效")
	}

	if err := as.SetMonitored(9999, true); err == nil {
		t.Fatal("不存在的记录应报错")
	}
}
