package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxDepth - потолок вложенности ветки комментариев по умолчанию
const DefaultMaxDepth = 2

// MaxBodyLength - ограничение на длину текста комментария
const MaxBodyLength = 2000

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Post struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  uint      `json:"author_id"`
	Upvotes   int       `json:"like_count"`
	Downvotes int       `json:"dislike_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post"`
	ParentID  *uint     `json:"parent_id"`
	Content   string    `json:"content"`
	AuthorID  uint      `json:"author_id"`
	Depth     int       `json:"depth"`
	MaxDepth  int       `json:"max_depth"`
	Upvotes   int       `json:"like_count"`
	Downvotes int       `json:"dislike_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcceptsReplies сообщает, можно ли отвечать на комментарий (и показывать ответы на него).
// Одно правило для записи и для отображения: depth < max_depth.
func (c *Comment) AcceptsReplies() bool {
	return c.Depth < c.MaxDepth
}

// CommentNode - материализованное дерево ответов
type CommentNode struct {
	Comment *Comment      `json:"comment"`
	Replies []CommentNode `json:"replies"`
}

type Polarity int

const (
	Up   Polarity = 1
	Down Polarity = -1
)

// ParsePolarity принимает литералы из API: up/down, like/dislike, 1/-1
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "like", "1", "+1":
		return Up, nil
	case "down", "dislike", "-1":
		return Down, nil
	}
	return 0, Invalid("polarity", fmt.Sprintf("unknown polarity %q", s))
}

func (p Polarity) Valid() bool {
	return p == Up || p == Down
}

func (p Polarity) String() string {
	switch p {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "polarity(" + strconv.Itoa(int(p)) + ")"
}

func (p Polarity) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid polarity %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Polarity) UnmarshalText(b []byte) error {
	v, err := ParsePolarity(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// UnmarshalJSON принимает и строку ("up"), и число (1, -1)
func (p *Polarity) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return p.UnmarshalText([]byte(s))
}

type TargetKind string

const (
	KindPost    TargetKind = "post"
	KindComment TargetKind = "comment"
)

// Target - ссылка реакции ровно на один пост или ровно на один комментарий.
// Нулевое значение невалидно, собрать цель можно только через PostTarget/CommentTarget.
type Target struct {
	kind TargetKind
	id   uint
}

func PostTarget(id uint) Target {
	return Target{kind: KindPost, id: id}
}

func CommentTarget(id uint) Target {
	return Target{kind: KindComment, id: id}
}

// NewTarget собирает цель из сырых значений (например, из БД)
func NewTarget(kind TargetKind, id uint) (Target, error) {
	t := Target{kind: kind, id: id}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

func (t Target) Kind() TargetKind { return t.kind }
func (t Target) ID() uint         { return t.id }

func (t Target) Validate() error {
	switch t.kind {
	case KindPost, KindComment:
	case "":
		return Invalid("target", "target kind is missing")
	default:
		return Invalid("target", fmt.Sprintf("unknown target kind %q", t.kind))
	}
	if t.id == 0 {
		return Invalid("target", "target id is missing")
	}
	return nil
}

func (t Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind TargetKind `json:"kind"`
		ID   uint       `json:"id"`
	}{t.kind, t.id})
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}

type Reaction struct {
	ID        uint      `json:"id"`
	AuthorID  uint      `json:"author_id"`
	Target    Target    `json:"target"`
	Polarity  Polarity  `json:"reaction_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tally - денормализованные счётчики единицы контента.
// PostID - пост, к ветке которого относится цель (для рассылки событий).
type Tally struct {
	Target    Target `json:"target"`
	PostID    uint   `json:"post_id"`
	Upvotes   int    `json:"like_count"`
	Downvotes int    `json:"dislike_count"`
}

func (t Tally) Score() int {
	return t.Upvotes - t.Downvotes
}

// Count возвращает значение счётчика указанной полярности
func (t Tally) Count(p Polarity) int {
	if p == Down {
		return t.Downvotes
	}
	return t.Upvotes
}

type PostSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	AuthorID     uint      `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	Score        int       `json:"score"`
	CommentCount int       `json:"comment_count"`
}

type CommentSummary struct {
	Comment    *Comment `json:"comment"`
	Score      int      `json:"score"`
	ReplyCount int      `json:"reply_count"`
}

type EventKind string

const (
	EventCommentAttached EventKind = "comment.attached"
	EventTallyChanged    EventKind = "tally.changed"
)

// Event рассылается подписчикам поста
type Event struct {
	Kind    EventKind `json:"kind"`
	PostID  uint      `json:"post_id"`
	Comment *Comment  `json:"comment,omitempty"`
	Target  string    `json:"target,omitempty"`
	Tally   *Tally    `json:"tally,omitempty"`
}
