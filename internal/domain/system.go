package domain

import "time"

// Setting is a key-value store row (e.g. the currency exchange rate).
type Setting struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:128" json:"key" form:"key"`
	Value     string    `gorm:"size:2048" json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Setting) TableName() string {
	return "sys_setting"
}

// Operator is a back-office admin account. Password holds a bcrypt hash.
type Operator struct {
	ID        int64     `json:"id,string" form:"id"`
	Username  string    `gorm:"uniqueIndex;size:64" json:"username" form:"username"`
	Password  string    `json:"-" form:"password"`
	Realname  string    `json:"realname" form:"realname"`
	Level     string    `json:"level" form:"level"`
	Status    string    `json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Operator) TableName() string {
	return "sys_operator"
}

// OperatorLog is an admin action audit row, purged periodically.
type OperatorLog struct {
	ID      int64     `json:"id,string"`
	OprName string    `json:"opr_name"`
	OprIP   string    `json:"opr_ip"`
	Action  string    `json:"action"`
	Desc    string    `json:"desc"`
	OptTime time.Time `json:"opt_time"`
}

// TableName Specify table name
func (OperatorLog) TableName() string {
	return "sys_operator_log"
}
