package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNoSources           = errors.New("no boundary sources configured")
	ErrEmptySource         = errors.New("boundary source has no regions")
	ErrUnknownResolution   = errors.New("unknown resolution")
	ErrDuplicateResolution = errors.New("resolution supplied more than once")
	ErrEmptyName           = errors.New("empty canonical name")
	ErrNotLoaded           = errors.New("resolution not loaded")
)

// SourceLoadError：数据源无法打开、为空或缺少名称列；目录构建整体失败
type SourceLoadError struct {
	Resolution Resolution
	Path       string
	Err        error
}

func (e *SourceLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Resolution, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Resolution, e.Path, e.Err)
}

func (e *SourceLoadError) Unwrap() error { return e.Err }

// SchemaError：缺少必需列或某行几何不合法；Row 为 -1 表示列级错误
type SchemaError struct {
	Resolution Resolution
	Row        int
	Field      string
	Err        error
}

func (e *SchemaError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("schema %s: field %q: %v", e.Resolution, e.Field, e.Err)
	}
	return fmt.Sprintf("schema %s: row %d field %q: %v", e.Resolution, e.Row, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// UnknownRegionError：名称或代码在所选比例尺中不存在
type UnknownRegionError struct {
	Name       string
	Resolution Resolution
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("no region %q in %s", e.Name, e.Resolution)
}
