package models

import "time"

// SoftDelete 는 논리 삭제 상태다. 삭제된 문서는 감사 목적으로 남겨 두고
// 조회 쿼리에서만 제외한다.
type SoftDelete struct {
	IsDeleted bool       `bson:"is_deleted" json:"-"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"-"`
	DeletedBy string     `bson:"deleted_by,omitempty" json:"-"`
}
