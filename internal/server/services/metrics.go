package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 审批与分配指标
type Metrics struct {
	approvals         prometheus.Counter
	rejections        prometheus.Counter
	assignedAddresses prometheus.Counter
	allocationErrors  *prometheus.CounterVec
}

// NewMetrics 注册并创建指标，进程内只应调用一次
func NewMetrics() *Metrics {
	return &Metrics{
		approvals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipadmin_requests_approved_total",
			Help: "Approved IP requests",
		}),
		rejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipadmin_requests_rejected_total",
			Help: "Rejected IP requests",
		}),
		assignedAddresses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ipadmin_addresses_assigned_total",
			Help: "IP addresses assigned",
		}),
		allocationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ipadmin_allocation_errors_total",
			Help: "Failed allocation attempts",
		}, []string{"reason"}),
	}
}

// ObserveApproval 记录一次成功审批及其分配的地址数
func (m *Metrics) ObserveApproval(addressCount int) {
	if m == nil {
		return
	}
	m.approvals.Inc()
	m.assignedAddresses.Add(float64(addressCount))
}

// ObserveRejection 记录一次驳回
func (m *Metrics) ObserveRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
}

// ObserveAllocationError 按失败原因记录一次分配失败
func (m *Metrics) ObserveAllocationError(err error) {
	if m == nil || err == nil {
		return
	}

	reason := "other"
	var conflict *ConflictError
	var capacity *InsufficientCapacityError
	var mismatch *SizeMismatchError
	switch {
	case errors.As(err, &conflict):
		reason = "conflict"
	case errors.As(err, &capacity):
		reason = "insufficient_capacity"
	case errors.As(err, &mismatch):
		reason = "size_mismatch"
	case errors.Is(err, ErrOutOfPoolRange):
		reason = "out_of_range"
	case errors.Is(err, ErrInvalidState):
		reason = "invalid_state"
	}

	m.allocationErrors.WithLabelValues(reason).Inc()
}
