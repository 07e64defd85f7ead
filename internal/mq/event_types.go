package mq

import "time"

// Routing keys on the projecthub.events topic exchange.
const (
	RoutingKeyProjectCreated  = "project.created"
	RoutingKeyMembershipAdded = "membership.added"
	RoutingKeyTaskCascaded    = "task.completed.cascaded"
)

// 项目创建事件的 payload
type ProjectCreatedPayload struct {
	ProjectID int       `json:"project_id"`
	ClientID  int       `json:"client_id"`
	Tag       string    `json:"tag"`
	CreatorID int       `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// 成员加入事件的 payload
type MembershipAddedPayload struct {
	ProjectID int    `json:"project_id"`
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	AddedBy   int    `json:"added_by"`
}

// 任务完成级联事件的 payload
type TaskCascadedPayload struct {
	TaskID          int  `json:"task_id"`
	ProjectID       int  `json:"project_id"`
	Completed       bool `json:"completed"`
	DescendantCount int  `json:"descendant_count"`
}
