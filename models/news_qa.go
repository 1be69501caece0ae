package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChoiceLabels is the fixed label set of a quiz question.
var ChoiceLabels = []string{"A", "B", "C", "D"}

// NewsQA is a quiz question derived from one news article.
// Collection: news_qa
//
// URI 는 원본 기사 URI 로 중복 수집 방지 키다. 비어 있을 수 있으며
// (직접 생성된 문항), 비어 있지 않은 값은 partial unique index 로 보호된다.
type NewsQA struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryID  int64              `bson:"category_id" json:"category"`
	Question    string             `bson:"question" json:"question"`
	Answer      string             `bson:"answer" json:"answer"`
	Description string             `bson:"description" json:"description"`
	Options     map[string]string  `bson:"options" json:"options"`
	Paragraph   string             `bson:"paragraph,omitempty" json:"paragraph,omitempty"`
	URI         *string            `bson:"uri,omitempty" json:"uri,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	SoftDelete  `bson:",inline"`
}
