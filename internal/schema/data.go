package schema

// 各类目字段数据。字段键与后端多部分表单的约定保持一致；
// 同义字段 (takasli / exchange) 在不同类目后端键不同，属于后端契约，不得归一化

const (
	defaultMaxGallery    = 15
	defaultMaxVideos     = 3
	defaultMaxVideoBytes = 50 * 1024 * 1024
)

// 通用枚举
var (
	yesNo          = []string{"evet", "hayır"}
	warrantyOpts   = []string{"var", "yok"}
	tireConditions = []string{"%90-100", "%75-89", "%50-74", "%25-49", "%0-24"}

	coverSystems = []string{"Hidrolik Kapak", "Manuel Kapak", "Yan Açılır Kapak", "Arka Açılır Kapak", "Diğer"}

	fuelTypes     = []string{"Benzinli", "Benzin & LPG", "Dizel", "Hibrit", "Elektrikli"}
	transmissions = []string{"Manuel", "Otomatik"}
	conditions    = []string{"Sıfır", "Yurtdışından ithal", "ikinci el"}
	drivetrains   = []string{"4x2 Arkadan İtişli", "4x2 Önden Çekişli", "4x4"}
	plateTypes    = []string{"Türkiye Plakalı", "Mavi Plakalı"}
)

// 基础字段 (每个类目都有)
func baseFields() []FieldSpec {
	return []FieldSpec{
		{Key: "title", Type: TypeText, Required: true, Step: 0},
		{Key: "description", Type: TypeText, Required: true, Step: 0},
		{Key: "productionYear", Type: TypeNumber, Required: true, Step: 0},
		{Key: "price", Type: TypeCurrency, Required: true, Step: 0},
	}
}

// 位置与联系人字段 (步骤编号由调用处指定)
func locationContactFields(step int) []FieldSpec {
	return []FieldSpec{
		{Key: "cityId", Type: TypeNumber, Required: true, Step: step},
		{Key: "districtId", Type: TypeNumber, Required: true, Step: step},
		{Key: "sellerName", Type: TypeText, Required: false, Step: step},
		{Key: "phone", Type: TypeText, Required: false, Step: step},
		{Key: "email", Type: TypeText, Required: false, Step: step},
	}
}

// 遗留后端的联系人键改名
func legacyContactRenames() map[string]string {
	return map[string]string{
		"productionYear": "year",
		"sellerName":     "seller_name",
		"phone":          "seller_phone",
		"email":          "seller_email",
	}
}

var registry = map[string]FieldSchema{

	// ==================== 多Dorse (挂车) ====================

	// 库鲁约克-盖板(岩石型)：尺寸/载重为主的挂车表单
	"dorse/kaya-tipi": {
		CategoryKey: "dorse/kaya-tipi",
		Endpoint:    "dorse",
		Steps:       3,
		Fields: append(append(baseFields(),
			FieldSpec{Key: "dingilSayisi", Type: TypeNumber, Required: true, Step: 1},
			FieldSpec{Key: "uzunluk", Type: TypeNumber, Required: true, Step: 1},   // metre
			FieldSpec{Key: "genislik", Type: TypeNumber, Required: true, Step: 1},  // metre
			FieldSpec{Key: "yukseklik", Type: TypeNumber, Required: true, Step: 1}, // metre
			FieldSpec{Key: "istiapHaddi", Type: TypeNumber, Required: true, Step: 1},
			FieldSpec{Key: "kapakSistemi", Type: TypeEnum, Required: true, Enum: coverSystems, Step: 1},
			FieldSpec{Key: "lastikDurumu", Type: TypeEnum, Required: true, Enum: tireConditions, Step: 1},
			FieldSpec{Key: "takasli", Type: TypeEnum, Required: false, Enum: yesNo, Step: 1},
			FieldSpec{Key: "warranty", Type: TypeEnum, Required: false, Enum: warrantyOpts, Step: 1},
			FieldSpec{Key: "negotiable", Type: TypeEnum, Required: false, Enum: yesNo, Step: 1},
			FieldSpec{Key: "detailedInfo", Type: TypeText, Required: false, Step: 1},
		), locationContactFields(2)...),
		Renames:       legacyContactRenames(),
		MaxGallery:    defaultMaxGallery,
		MaxVideos:     defaultMaxVideos,
		MaxVideoBytes: defaultMaxVideoBytes,
	},

	// Dorse 泛类目 (无子型号细分时)
	"dorse": {
		CategoryKey: "dorse",
		Endpoint:    "dorse",
		Steps:       3,
		Fields: append(append(baseFields(),
			FieldSpec{Key: "dingilSayisi", Type: TypeNumber, Required: true, Step: 1},
			FieldSpec{Key: "uzunluk", Type: TypeNumber, Required: false, Step: 1},
			FieldSpec{Key: "genislik", Type: TypeNumber, Required: false, Step: 1},
			FieldSpec{Key: "lastikDurumu", Type: TypeEnum, Required: false, Enum: tireConditions, Step: 1},
			FieldSpec{Key: "takasli", Type: TypeEnum, Required: false, Enum: yesNo, Step: 1},
			FieldSpec{Key: "detailedInfo", Type: TypeText, Required: false, Step: 1},
		), locationContactFields(2)...),
		Renames:       legacyContactRenames(),
		MaxGallery:    defaultMaxGallery,
		MaxVideos:     defaultMaxVideos,
		MaxVideoBytes: defaultMaxVideoBytes,
	},

	// ==================== Minivan & Panelvan ====================

	"minivan-panelvan": {
		CategoryKey: "minivan-panelvan",
		Endpoint:    "minivan-panelvan",
		Steps:       4,
		Fields: append(append(baseFields(),
			FieldSpec{Key: "mileage", Type: TypeNumber, Required: true, Step: 0},
			FieldSpec{Key: "currency", Type: TypeEnum, Required: false, Enum: []string{"TRY", "USD", "EUR"}, Step: 0},
			FieldSpec{Key: "fuelType", Type: TypeEnum, Required: true, Enum: fuelTypes, Step: 1},
			FieldSpec{Key: "transmission", Type: TypeEnum, Required: true, Enum: transmissions, Step: 1},
			FieldSpec{Key: "condition", Type: TypeEnum, Required: true, Enum: conditions, Step: 1},
			FieldSpec{Key: "bodyType", Type: TypeEnum, Required: false, Enum: []string{"Camlı Van", "Yarım Camlı Van", "Panel Van", "Frigorifik Panel Van", "Minibüs"}, Step: 1},
			FieldSpec{Key: "chassis", Type: TypeEnum, Required: false, Enum: []string{"Standart", "Orta", "Uzun"}, Step: 1},
			FieldSpec{Key: "motorPower", Type: TypeText, Required: false, Step: 1},
			FieldSpec{Key: "engineVolume", Type: TypeText, Required: false, Step: 1},
			FieldSpec{Key: "drivetrain", Type: TypeEnum, Required: false, Enum: drivetrains, Step: 1},
			FieldSpec{Key: "seatCount", Type: TypeText, Required: false, Step: 1},
			FieldSpec{Key: "color", Type: TypeText, Required: false, Step: 1},
			FieldSpec{Key: "licenseType", Type: TypeEnum, Required: false, Enum: []string{"Otomobil", "Minibüs", "Kamyonet", "Kamyon"}, Step: 1},
			FieldSpec{Key: "plateType", Type: TypeEnum, Required: false, Enum: plateTypes, Step: 1},
			FieldSpec{Key: "hasAccidentRecord", Type: TypeBool, Required: false, Step: 1},
			FieldSpec{Key: "exchange", Type: TypeEnum, Required: false, Enum: yesNo, Step: 1},
		), locationContactFields(3)...),
		// 该类目后端只改联系人键；车辆字段键与本地一致
		Renames: map[string]string{
			"productionYear": "year",
			"sellerName":     "seller_name",
			"phone":          "seller_phone",
			"email":          "seller_email",
		},
		FeatureGroups: []FeatureGroup{
			{Key: "safetyFeatures", Options: []string{"ABS", "AEB", "BAS", "Çocuk Kilidi", "ESP / VSA", "Hava Yastığı (Sürücü)", "Hava Yastığı (Yolcu)", "Immobilizer", "Isofix", "Merkezi Kilit", "Şerit Takip Sistemi", "Yokuş Kalkış Desteği"}},
			{Key: "interiorFeatures", Options: []string{"Deri Koltuk", "Elektrikli Camlar", "Geri Görüş Kamerası", "Hız Sabitleme Sistemi", "Hidrolik Direksiyon", "Klima", "Start / Stop", "Yol Bilgisayarı"}},
			{Key: "exteriorFeatures", Options: []string{"Far (Adaptif)", "Otomatik Kapı", "Park Sensörü (Arka)", "Park Sensörü (Ön)", "Sunroof", "Sürgülü Kapı (Çift)", "Sürgülü Kapı (Tek)"}},
			{Key: "multimediaFeatures", Options: []string{"Android Auto", "Apple CarPlay", "Bluetooth", "USB / AUX"}},
		},
		MaxGallery:    defaultMaxGallery,
		MaxVideos:     defaultMaxVideos,
		MaxVideoBytes: defaultMaxVideoBytes,
	},

	// ==================== Otobüs ====================

	"otobus": {
		CategoryKey: "otobus",
		Steps:       3,
		Endpoint:    "otobus",
		Fields: append(append(baseFields(),
			FieldSpec{Key: "mileage", Type: TypeNumber, Required: true, Step: 0},
			FieldSpec{Key: "capacity", Type: TypeNumber, Required: true, Step: 1},
			FieldSpec{Key: "fuelType", Type: TypeEnum, Required: true, Enum: fuelTypes, Step: 1},
			FieldSpec{Key: "transmission", Type: TypeEnum, Required: false, Enum: transmissions, Step: 1},
			FieldSpec{Key: "seatLayout", Type: TypeEnum, Required: false, Enum: []string{"2+1", "2+2"}, Step: 1},
			FieldSpec{Key: "exchange", Type: TypeEnum, Required: false, Enum: yesNo, Step: 1},
		), locationContactFields(2)...),
		Renames: map[string]string{
			"productionYear": "year",
			"capacity":       "passengerCapacity", // 后端沿用旧座位容量键
			"sellerName":     "seller_name",
			"phone":          "seller_phone",
			"email":          "seller_email",
		},
		MaxGallery:    defaultMaxGallery,
		MaxVideos:     defaultMaxVideos,
		MaxVideoBytes: defaultMaxVideoBytes,
	},

	// ==================== Kamyon ====================

	"kamyon": {
		CategoryKey: "kamyon",
		Steps:       3,
		Endpoint:    "kamyon",
		Fields: append(append(baseFields(),
			FieldSpec{Key: "mileage", Type: TypeNumber, Required: true, Step: 0},
			FieldSpec{Key: "loadCapacity", Type: TypeNumber, Required: false, Step: 1},
			FieldSpec{Key: "fuelType", Type: TypeEnum, Required: true, Enum: fuelTypes, Step: 1},
			FieldSpec{Key: "drivetrain", Type: TypeEnum, Required: false, Enum: drivetrains, Step: 1},
			FieldSpec{Key: "cabinType", Type: TypeText, Required: false, Step: 1},
			FieldSpec{Key: "tireCondition", Type: TypeEnum, Required: false, Enum: tireConditions, Step: 1},
			FieldSpec{Key: "exchange", Type: TypeEnum, Required: false, Enum: yesNo, Step: 1},
		), locationContactFields(2)...),
		Renames: map[string]string{
			"productionYear": "year",
			"sellerName":     "seller_name",
			"phone":          "seller_phone",
			"email":          "seller_email",
		},
		MaxGallery:    defaultMaxGallery,
		MaxVideos:     defaultMaxVideos,
		MaxVideoBytes: defaultMaxVideoBytes,
	},
}

// genericSchema 未知类目的降级架构
var genericSchema = FieldSchema{
	CategoryKey: "generic",
	Endpoint:    "generic",
	Steps:       2,
	Fields: append(baseFields(),
		FieldSpec{Key: "cityId", Type: TypeNumber, Required: true, Step: 1},
		FieldSpec{Key: "districtId", Type: TypeNumber, Required: true, Step: 1},
	),
	Renames: map[string]string{
		"productionYear": "year",
	},
	MaxGallery:    defaultMaxGallery,
	MaxVideos:     defaultMaxVideos,
	MaxVideoBytes: defaultMaxVideoBytes,
}
