package repository

import "time"

// AccountListFilter 查询账户列表的过滤条件
type AccountListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Tier        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ArtifactListFilter 查询站点列表的过滤条件
type ArtifactListFilter struct {
	Page           int
	PageSize       int
	OwnerAccountID uint
	Keyword        string
	Status         string
	AutoFeatured   *bool
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	OrderBy        string
	WithOwner      bool
}

// ShareEventListFilter 查询分享事件列表的过滤条件
type ShareEventListFilter struct {
	Page           int
	PageSize       int
	ArtifactID     uint
	ActorAccountID uint
	Platform       string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

// ReferralListFilter 查询推荐关系列表的过滤条件
type ReferralListFilter struct {
	Page              int
	PageSize          int
	ReferrerAccountID uint
	ReferredEmail     string
	Status            string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
}

// CommissionListFilter 查询佣金台账列表的过滤条件
type CommissionListFilter struct {
	Page                 int
	PageSize             int
	ReferralID           uint
	BeneficiaryAccountID uint
	Status               string
	PeriodFrom           *time.Time
	PeriodTo             *time.Time
	WithReferral         bool
}

// ShowcaseListFilter 查询展示位列表的过滤条件
type ShowcaseListFilter struct {
	Page         int
	PageSize     int
	BoostTier    string
	AccountID    uint
	WithArtifact bool
}

// AdminLoginLogListFilter 查询管理员登录日志列表的过滤条件
type AdminLoginLogListFilter struct {
	Page        int
	PageSize    int
	AdminID     uint
	Username    string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
