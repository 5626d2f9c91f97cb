package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	//在庫を変更した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
	//商品を削除した操作。
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
	//並び順を変更した操作。
	AuditActionReorder AuditAction = "REORDER_POSITIONS"
	//支払いを確定/却下した操作。
	AuditActionConfirmPayment AuditAction = "CONFIRM_PAYMENT"
	AuditActionRejectPayment  AuditAction = "REJECT_PAYMENT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourcePayment AuditResourceType = "payment"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//トークンのsub
	Actor string `gorm:"type:varchar(255);not null;index" json:"actor"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
