package services

import (
	"fmt"

	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"

	"gorm.io/gorm"
)

// AllocatorService 地址分配器
// 自动模式取池内编号最小的可用地址，手动模式校验管理员指定的连续地址段；
// 两种模式都在调用方的事务内完成预检查和写入
type AllocatorService struct {
	ledger *LedgerService
}

// NewAllocatorService 创建地址分配器
func NewAllocatorService(ledger *LedgerService) *AllocatorService {
	return &AllocatorService{
		ledger: ledger,
	}
}

// AllocateAuto 自动分配
// 按地址升序扫描地址池，跳过VLAN内已占用的地址，凑够申请数量后写入台账。
// 结果是确定的：同样的台账状态下总是返回编号最小的一组可用地址
func (as *AllocatorService) AllocateAuto(tx *gorm.DB, pool *models.IPPool, request *models.IPRequest) ([]uint32, error) {
	poolRange, err := pool.Range()
	if err != nil {
		return nil, fmt.Errorf("地址池范围非法: %w", err)
	}

	existing, err := as.ledger.AssignedAddressesInVlan(tx, pool.VlanID)
	if err != nil {
		return nil, err
	}

	picked := make([]uint32, 0, request.IPCount)
	it := poolRange.Iter()
	for uint(len(picked)) < request.IPCount {
		addr, ok := it.Next()
		if !ok {
			break
		}
		if _, used := existing[addr]; used {
			continue
		}
		picked = append(picked, addr)
	}

	if uint(len(picked)) < request.IPCount {
		return nil, &InsufficientCapacityError{
			Available: uint(len(picked)),
			Required:  request.IPCount,
		}
	}

	if err := as.ledger.Reserve(tx, request, picked, false); err != nil {
		return nil, err
	}

	return picked, nil
}

// AllocateManual 手动分配
// 依次校验: 地址段合法 -> 在地址池范围内 -> 大小与申请数量一致 -> 无冲突，
// 第一个失败的校验即为返回的错误
func (as *AllocatorService) AllocateManual(tx *gorm.DB, pool *models.IPPool, request *models.IPRequest, startStr, endStr string) ([]uint32, error) {
	block, err := ipaddr.NewRange(startStr, endStr)
	if err != nil {
		return nil, err
	}

	poolRange, err := pool.Range()
	if err != nil {
		return nil, fmt.Errorf("地址池范围非法: %w", err)
	}
	if !poolRange.Contains(block.Start()) || !poolRange.Contains(block.End()) {
		return nil, ErrOutOfPoolRange
	}

	if uint(block.Size()) != request.IPCount {
		return nil, &SizeMismatchError{
			Got:  uint(block.Size()),
			Want: request.IPCount,
		}
	}

	existing, err := as.ledger.AssignedAddressesInVlan(tx, pool.VlanID)
	if err != nil {
		return nil, err
	}

	addrs := make([]uint32, 0, block.Size())
	it := block.Iter()
	for {
		addr, ok := it.Next()
		if !ok {
			break
		}
		// 升序扫描，报告第一个冲突地址
		if _, used := existing[addr]; used {
			return nil, &ConflictError{Address: ipaddr.FormatIPv4(addr)}
		}
		addrs = append(addrs, addr)
	}

	if err := as.ledger.Reserve(tx, request, addrs, true); err != nil {
		return nil, err
	}

	return addrs, nil
}
