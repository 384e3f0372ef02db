package domain

import (
	"context"
	"errors"

	"github.com/haierkeys/personal-notes/pkg/timex"
)

var (
	// ErrNoteNotFound no row matched the filter
	// ErrNoteNotFound 没有行匹配过滤条件
	ErrNoteNotFound = errors.New("note not found")
	// ErrSchemaMissing the remote notes table does not exist
	// ErrSchemaMissing 远端 notes 表不存在
	ErrSchemaMissing = errors.New("remote notes table does not exist")
	// ErrLocalCorrupt the local blob could not be decoded
	// ErrLocalCorrupt 本地数据无法解析
	ErrLocalCorrupt = errors.New("local notes data is corrupt")
	// ErrLocalUnavailable the on-device storage refused the read or write
	// ErrLocalUnavailable 本地存储不可用
	ErrLocalUnavailable = errors.New("local notes storage is unavailable")
)

// Column names of the remote notes table
// 远端 notes 表的列名
const (
	ColumnID        = "id"
	ColumnTitle     = "title"
	ColumnContent   = "content"
	ColumnUpdatedAt = "updated_at"
)

// AllColumns the projection used when listing
// AllColumns 列表查询使用的字段
var AllColumns = []string{ColumnID, ColumnTitle, ColumnContent, ColumnUpdatedAt}

// Filter an equality match on one column
// Filter 单列等值过滤
type Filter struct {
	Column string
	Value  string
}

// ByID builds the filter addressing a single note
// ByID 构造按 ID 定位单条笔记的过滤条件
func ByID(id NoteID) Filter {
	return Filter{Column: ColumnID, Value: id.String()}
}

// Order a sort specification
// Order 排序规则
type Order struct {
	Column    string
	Ascending bool
}

// Query a remote select
// Query 远端查询
type Query struct {
	Columns []string
	Filter  *Filter
	Order   *Order
	Limit   int
}

// ListQuery the query the facade issues to list every note
// ListQuery 列出全部笔记时使用的查询
func ListQuery() Query {
	return Query{
		Columns: AllColumns,
		Order:   &Order{Column: ColumnUpdatedAt},
	}
}

// NoteRow the writable columns of a remote row
// NoteRow 远端行的可写字段
type NoteRow struct {
	Title     string
	Content   string
	UpdatedAt timex.Time
}

// RemoteNoteStore 远端行存储接口
// RemoteNoteStore mirrors a row-store table holding notes
type RemoteNoteStore interface {
	// Select 查询笔记
	Select(ctx context.Context, q Query) ([]Note, error)
	// Insert 插入一行并返回带远端 ID 的笔记
	Insert(ctx context.Context, row NoteRow) (Note, error)
	// Update 更新匹配行并返回更新后的笔记
	Update(ctx context.Context, row NoteRow, f Filter) (Note, error)
	// Delete 删除匹配行
	Delete(ctx context.Context, f Filter) error
	// Initialize 探测或迁移表结构
	Initialize(ctx context.Context) error
	// Driver 驱动名称
	Driver() string
}

// LocalNoteStore 本地笔记集合接口
// LocalNoteStore the on-device collection of notes, always rewritten in full
type LocalNoteStore interface {
	// ReadAll 读取全部本地笔记
	ReadAll(ctx context.Context) ([]Note, error)
	// WriteAll 覆盖写入全部本地笔记
	WriteAll(ctx context.Context, notes []Note) error
	// Mutate 以原子方式读取-修改-写回
	Mutate(ctx context.Context, fn func(notes []Note) ([]Note, error)) error
	// Prepend 在集合头部插入笔记
	Prepend(ctx context.Context, note Note) error
	// Upsert 按 ID 替换笔记，不存在时插入头部
	Upsert(ctx context.Context, note Note) error
	// Remove 按 ID 删除笔记，不存在时不做处理
	Remove(ctx context.Context, id NoteID) error
	// GenerateID 生成新的本地 ID
	GenerateID() NoteID
}
