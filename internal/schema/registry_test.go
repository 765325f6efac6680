package schema

import "testing"

func TestSchemaFor_VariantOverride(t *testing.T) {
	s := SchemaFor("dorse", "kaya-tipi")

	if s.CategoryKey != "dorse/kaya-tipi" {
		t.Fatalf("CategoryKey = %s, want dorse/kaya-tipi", s.CategoryKey)
	}

	// 岩石型盖板挂车必须带尺寸与载重字段
	for _, key := range []string{"dingilSayisi", "uzunluk", "genislik", "yukseklik", "istiapHaddi", "kapakSistemi", "lastikDurumu"} {
		if s.Field(key) == nil {
			t.Errorf("缺少字段 %s", key)
		}
	}
}

func TestSchemaFor_CategoryFallback(t *testing.T) {
	// 未登记的子型号落回类目级架构
	s := SchemaFor("dorse", "bilinmeyen-varyant")
	if s.CategoryKey != "dorse" {
		t.Errorf("CategoryKey = %s, want dorse", s.CategoryKey)
	}
}

func TestSchemaFor_GenericFallback(t *testing.T) {
	s := SchemaFor("yeni-kategori", "")

	if s.CategoryKey != "generic" {
		t.Fatalf("CategoryKey = %s, want generic", s.CategoryKey)
	}

	// 降级架构仍可发布：标题/描述/价格/年份/位置
	for _, key := range []string{"title", "description", "price", "productionYear", "cityId", "districtId"} {
		f := s.Field(key)
		if f == nil {
			t.Fatalf("通用架构缺少字段 %s", key)
		}
		if !f.Required {
			t.Errorf("通用架构字段 %s 应为必填", key)
		}
	}
}

func TestSchemaFor_Pure(t *testing.T) {
	a := SchemaFor("otobus", "")
	b := SchemaFor("otobus", "")

	if len(a.Fields) != len(b.Fields) {
		t.Fatal("同一类目两次解析字段数不同")
	}
	for i := range a.Fields {
		if a.Fields[i].Key != b.Fields[i].Key {
			t.Fatalf("字段顺序不稳定: %s vs %s", a.Fields[i].Key, b.Fields[i].Key)
		}
	}
}

func TestBackendKey_RenameTable(t *testing.T) {
	tests := []struct {
		category string
		local    string
		want     string
	}{
		{"otobus", "capacity", "passengerCapacity"},
		{"otobus", "productionYear", "year"},
		{"dorse", "sellerName", "seller_name"},
		{"dorse", "takasli", "takasli"},            // 遗留键不归一化
		{"minivan-panelvan", "exchange", "exchange"}, // 新键同样原样
		{"dorse", "title", "title"},
	}

	for _, tt := range tests {
		s := SchemaFor(tt.category, "")
		if got := s.BackendKey(tt.local); got != tt.want {
			t.Errorf("%s: BackendKey(%s) = %s, want %s", tt.category, tt.local, got, tt.want)
		}
	}
}

func TestRequiredKeys_Order(t *testing.T) {
	s := SchemaFor("dorse", "kaya-tipi")
	keys := s.RequiredKeys()

	if len(keys) == 0 {
		t.Fatal("必填字段不应为空")
	}
	if keys[0] != "title" {
		t.Errorf("必填字段首位 = %s, want title", keys[0])
	}
}
