package services

import (
	"testing"

	"github.com/mir5/ipadmin/internal/server/models"
)

func TestCreateVlanValidation(t *testing.T) {
	db := setupTestDB(t)
	seedVlan(t, db, 100)

	vs := NewVlanService()

	cases := []struct {
		name string
		in   VlanInput
	}{
		{"名称为空", VlanInput{VlanNumber: 101, Category: models.VlanCategoryPrivate}},
		{"编号为0", VlanInput{Name: "x", VlanNumber: 0, Category: models.VlanCategoryPrivate}},
		{"编号超上限", VlanInput{Name: "x", VlanNumber: models.VlanNumberMax + 1, Category: models.VlanCategoryPrivate}},
		{"类别非法", VlanInput{Name: "x", VlanNumber: 101, Category: 99}},
		{"编号重复", VlanInput{Name: "x", VlanNumber: 100, Category: models.VlanCategoryPrivate}},
		{"VPN名称含特殊字符", VlanInput{Name: "x", VlanNumber: 101, Category: models.VlanCategoryPrivate, VpnName: "vpn-01!"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := vs.CreateVlan(&tc.in); err == nil {
				t.Fatal("期望校验失败，实际成功")
			}
		})
	}

	vlan, err := vs.CreateVlan(&VlanInput{
		Name:       "研发网",
		VlanNumber: 101,
		Category:   models.VlanCategoryPrivate,
		VpnName:    "rdvpn01",
		Status:     true,
	})
	if err != nil {
		t.Fatalf("合法参数创建失败: %v", err)
	}
	if vlan.VlanNumber != 101 {
		t.Fatalf("VLAN编号 = %d", vlan.VlanNumber)
	}
}

func TestUpdateVlanKeepsOwnNumber(t *testing.T) {
	db := setupTestDB(t)
	vlan := seedVlan(t, db, 100)
	seedVlan(t, db, 200)

	vs := NewVlanService()

	// 更新时保留自身编号不算重复
	if _, err := vs.UpdateVlan(vlan.ID, &VlanInput{
		Name:       "改名",
		VlanNumber: 100,
		Category:   models.VlanCategoryPrivate,
		Status:     true,
	}); err != nil {
		t.Fatalf("保留编号更新失败: %v", err)
	}

	// 改成其他VLAN的编号应被拒绝
	if _, err := vs.UpdateVlan(vlan.ID, &VlanInput{
		Name:       "改名",
		VlanNumber: 200,
		Category:   models.VlanCategoryPrivate,
		Status:     true,
	}); err == nil {
		t.Fatal("占用他人编号的更新应被拒绝")
	}
}

func TestDeleteVlanGuards(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice", false)
	vlan := seedVlan(t, db, 100)
	pool := seedPool(t, db, vlan.ID, "10.0.0.1", "10.0.0.50")

	vs := NewVlanService()
	ps := NewPoolService()

	if err := vs.DeleteVlan(vlan.ID); err == nil {
		t.Fatal("有地址池的VLAN不应允许删除")
	}

	if err := ps.DeletePool(pool.ID); err != nil {
		t.Fatalf("删除地址池失败: %v", err)
	}

	seedRequest(t, db, user.ID, vlan.ID, 1)
	if err := vs.DeleteVlan(vlan.ID); err == nil {
		t.Fatal("有申请单的VLAN不应允许删除")
	}

	empty := seedVlan(t, db, 200)
	if err := vs.DeleteVlan(empty.ID); err != nil {
		t.Fatalf("删除空VLAN失败: %v", err)
	}
}

func TestListVlansVisibility(t *testing.T) {
	db := setupTestDB(t)
	seedVlan(t, db, 100)
	hidden := seedVlan(t, db, 200)
	db.Model(hidden).Update("is_visible_to_users", false)

	vs := NewVlanService()

	all, err := vs.ListVlans(false)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("全量列表 = %d 个, 期望 2 个", len(all))
	}

	visible, err := vs.ListVlans(true)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(visible) != 1 || visible[0].VlanNumber != 100 {
		t.Fatalf("可见列表 = %+v, 期望仅VLAN 100", visible)
	}
}
