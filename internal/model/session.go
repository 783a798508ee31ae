package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Card is a single question/answer pair.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CardList is stored as a JSONB array so the database can append to it
// atomically without a read-modify-write cycle.
type CardList []Card

func (c CardList) Value() (driver.Value, error) {
	if c == nil {
		c = CardList{}
	}
	return json.Marshal(c)
}

func (c *CardList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = CardList{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CardList", src)
	}
}

// FlashcardSession is a user-owned flashcard collection tied to one transcript.
// OwnerID is immutable after creation and every read or mutation is filtered
// by (id, owner_id).
type FlashcardSession struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"-"`
	Title      string    `db:"title" json:"title"`
	Cards      CardList  `db:"cards" json:"cards"`
	SourceText string    `db:"source_text" json:"sourceText"`
	FolderID   *string   `db:"folder_id" json:"folderId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateSessionParams struct {
	OwnerID    string
	Title      string
	Cards      CardList
	SourceText string
}

// SessionSummary is the reduced projection returned by list and single-session
// reads. It intentionally omits ownerId and folderId.
type SessionSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Cards      CardList  `json:"cards"`
	SourceText string    `json:"sourceText"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (s *FlashcardSession) Summary() SessionSummary {
	return SessionSummary{
		ID:         s.ID,
		Title:      s.Title,
		Cards:      s.Cards,
		SourceText: s.SourceText,
		CreatedAt:  s.CreatedAt,
	}
}
