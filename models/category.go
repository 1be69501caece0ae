package models

import "time"

// Category is a taxonomy node persisted for API consumers.
// Collection: categories
//
// _id 는 taxonomy 로딩 시 부여된 정수 id 를 그대로 사용한다. 사용자 선호
// 카테고리 목록이 이 id 를 참조한다.
type Category struct {
	ID        int64     `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	URI       string    `bson:"uri" json:"uri"`
	ParentID  *int64    `bson:"parent_id" json:"parent_category"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
