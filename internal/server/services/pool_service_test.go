package services

import (
	"testing"
)

func TestCreatePoolValidation(t *testing.T) {
	db := setupTestDB(t)
	vlan := seedVlan(t, db, 100)

	disabled := seedVlan(t, db, 200)
	db.Model(disabled).Update("status", false)

	ps := NewPoolService()

	base := PoolInput{
		VlanID:     vlan.ID,
		RangeStart: "10.0.0.10",
		RangeEnd:   "10.0.0.100",
		SubnetMask: "255.255.255.0",
		Gateway:    "10.0.0.10",
		DNSServers: "8.8.8.8,8.8.4.4",
		IsActive:   true,
	}

	cases := []struct {
		name   string
		mutate func(in *PoolInput)
	}{
		{"VLAN不存在", func(in *PoolInput) { in.VlanID = 9999 }},
		{"VLAN未启用", func(in *PoolInput) { in.VlanID = disabled.ID }},
		{"起止倒置", func(in *PoolInput) { in.RangeStart = "10.0.0.100"; in.RangeEnd = "10.0.0.10" }},
		{"单地址池", func(in *PoolInput) { in.RangeEnd = "10.0.0.10"; in.Gateway = "10.0.0.10" }},
		{"非法起始地址", func(in *PoolInput) { in.RangeStart = "300.0.0.1" }},
		{"IPv6地址", func(in *PoolInput) { in.RangeStart = "::1" }},
		{"非法掩码", func(in *PoolInput) { in.SubnetMask = "255.255.255.256" }},
		{"网关越界", func(in *PoolInput) { in.Gateway = "10.0.1.1" }},
		{"非法DNS列表", func(in *PoolInput) { in.DNSServers = "8.8.8.8,not-an-ip" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if _, err := ps.CreatePool(&in); err == nil {
				t.Fatal("期望校验失败，实际成功")
			}
		})
	}

	if _, err := ps.CreatePool(&base); err != nil {
		t.Fatalf("合法参数创建失败: %v", err)
	}
}

func TestCreatePoolRejectsOverlap(t *testing.T) {
	db := setupTestDB(t)
	vlan := seedVlan(t, db, 100)
	other := seedVlan(t, db, 200)
	seedPool(t, db, vlan.ID, "10.0.0.10", "10.0.0.100")

	ps := NewPoolService()

	overlapping := &PoolInput{
		VlanID:     vlan.ID,
		RangeStart: "10.0.0.50",
		RangeEnd:   "10.0.0.150",
		SubnetMask: "255.255.255.0",
		Gateway:    "10.0.0.50",
		IsActive:   true,
	}
	if _, err := ps.CreatePool(overlapping); err == nil {
		t.Fatal("同VLAN重叠地址池应被拒绝")
	}

	// 相邻不重叠的池允许创建
	adjacent := &PoolInput{
		VlanID:     vlan.ID,
		RangeStart: "10.0.0.101",
		RangeEnd:   "10.0.0.150",
		SubnetMask: "255.255.255.0",
		Gateway:    "10.0.0.101",
		IsActive:   true,
	}
	if _, err := ps.CreatePool(adjacent); err != nil {
		t.Fatalf("相邻地址池创建失败: %v", err)
	}

	// 不同VLAN允许使用重叠的地址段
	foreign := &PoolInput{
		VlanID:     other.ID,
		RangeStart: "10.0.0.10",
		RangeEnd:   "10.0.0.100",
		SubnetMask: "255.255.255.0",
		Gateway:    "10.0.0.10",
		IsActive:   true,
	}
	if _, err := ps.CreatePool(foreign); err != nil {
		t.Fatalf("其他VLAN创建重叠地址池失败: %v", err)
	}
}

func TestDeletePoolWithAssignments(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	rs := newTestRequestService()
	ps := NewPoolService()

	request := seedRequest(t, db, user.ID, vlan.ID, 2)
	if _, err := rs.ReviewRequest(&ReviewInput{RequestID: request.ID, AdminID: admin.ID, Approve: true, PoolID: pool.ID}); err != nil {
		t.Fatalf("审批失败: %v", err)
	}

	if err := ps.DeletePool(pool.ID); err == nil {
		t.Fatal("名下有分配记录的地址池不应允许删除")
	}

	if err := rs.DeleteRequest(request.ID); err != nil {
		t.Fatalf("删除申请单失败: %v", err)
	}
	if err := ps.DeletePool(pool.ID); err != nil {
		t.Fatalf("清空后删除地址池失败: %v", err)
	}
}

func TestPoolUsage(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	admin := seedUser(t, db, "admin", true)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.10")

	rs := newTestRequestService()
	ps := NewPoolService()

	request := seedRequest(t, db, user.ID, vlan.ID, 4)
	if _, err := rs.ReviewRequest(&ReviewInput{RequestID: request.ID, AdminID: admin.ID, Approve: true, PoolID: pool.ID}); err != nil {
		t.Fatalf("审批失败: %v", err)
	}

	loaded, err := ps.GetPool(pool.ID)
	if err != nil {
		t.Fatalf("读取地址池失败: %v", err)
	}
	usage, err := ps.Usage(loaded)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}

	if usage.Total != 10 || usage.Used != 4 || usage.Free != 6 {
		t.Fatalf("使用情况 = %+v, 期望 total=10 used=4 free=6", usage)
	}
	if usage.Utilization != 40 {
		t.Fatalf("使用率 = %.1f, 期望 40", usage.Utilization)
	}
}
