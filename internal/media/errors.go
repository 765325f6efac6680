package media

import "fmt"

// 媒体暂存错误都是局部可恢复的：整批拒绝、已有状态不动、用户改正后重试

// TooManyError 超出数量上限
type TooManyError struct {
	Kind  Kind
	Limit int
}

func (e *TooManyError) Error() string {
	return fmt.Sprintf("超出%s数量上限: 最多 %d 个", kindLabel(e.Kind), e.Limit)
}

// TooLargeError 单个文件超出体积上限
type TooLargeError struct {
	File     string
	MaxBytes int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("文件 %s 超出体积上限 (%d MB)", e.File, e.MaxBytes/1024/1024)
}

// InvalidKindError 文件类型不符
type InvalidKindError struct {
	File string
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("文件 %s 类型不符", e.File)
}

func kindLabel(k Kind) string {
	switch k {
	case KindVideo:
		return "视频"
	default:
		return "图片"
	}
}
