package queue

import (
	"encoding/json"
	"errors"

	"github.com/storefront/internal/constants"
	"github.com/storefront/internal/models"

	"github.com/hibiken/asynq"
)

// TaskAffiliateOrphanReferral 无归属推荐落盘任务
const TaskAffiliateOrphanReferral = constants.TaskAffiliateOrphanReferral

// OrphanReferralPayload 无归属推荐任务载荷
type OrphanReferralPayload struct {
	Orphan models.OrphanReferral `json:"orphan"`
}

// NewOrphanReferralTask 创建无归属推荐任务
func NewOrphanReferralTask(payload OrphanReferralPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAffiliateOrphanReferral, body), nil
}

// ParseOrphanReferralTask 解析任务载荷
func ParseOrphanReferralTask(task *asynq.Task) (OrphanReferralPayload, error) {
	var payload OrphanReferralPayload
	if task == nil {
		return payload, errors.New("task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
