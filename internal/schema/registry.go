package schema

// 字段架构注册表：类目标识 -> 表单字段清单的纯映射
// 每个类目的"个性"在这里全部以数据表达 (字段列表 + 改名表 + 特性组 + 媒体上限)，
// 表单控制器和提交组装器消费同一份数据，不允许任何类目写自己的组装代码

// FieldType 字段语义类型
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeNumber   FieldType = "number"
	TypeEnum     FieldType = "enum"
	TypeBool     FieldType = "bool"
	TypeCurrency FieldType = "currency"
)

// FieldSpec 单个表单字段
type FieldSpec struct {
	Key      string
	Type     FieldType
	Required bool
	Enum     []string // Type == enum 时的可选值
	Step     int      // 多步表单中所属步骤
}

// FeatureGroup 勾选特性组，提交时整组编码为一个 JSON 字段
type FeatureGroup struct {
	Key     string
	Options []string
}

// FieldSchema 某个类目的完整表单架构
type FieldSchema struct {
	CategoryKey string
	Endpoint    string // POST /ads/{Endpoint}
	Steps       int

	Fields        []FieldSpec
	Renames       map[string]string // 本地键 -> 后端键，按类目各自为准，不做跨类目归一
	FeatureGroups []FeatureGroup

	MaxGallery    int
	MaxVideos     int
	MaxVideoBytes int64
}

// Field 按键查字段，找不到返回 nil
func (s *FieldSchema) Field(key string) *FieldSpec {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i]
		}
	}
	return nil
}

// BackendKey 应用改名表后的后端字段键
func (s *FieldSchema) BackendKey(key string) string {
	if renamed, ok := s.Renames[key]; ok {
		return renamed
	}
	return key
}

// RequiredKeys 当前架构所有必填字段键 (按声明顺序)
func (s *FieldSchema) RequiredKeys() []string {
	var keys []string
	for _, f := range s.Fields {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// SchemaFor 解析类目标识到字段架构
// 纯函数：同样的输入永远返回同样的架构；未知类目回退到通用架构，
// 保证新上的类目也能以降级形式发布
func SchemaFor(categorySlug, variantSlug string) FieldSchema {
	if variantSlug != "" {
		if s, ok := registry[categorySlug+"/"+variantSlug]; ok {
			return s
		}
	}
	if s, ok := registry[categorySlug]; ok {
		return s
	}
	return genericSchema
}
