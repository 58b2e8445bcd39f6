package constraints

import "github.com/ByLCY/nexal/geom"

// PhotoPolicy 描述某地区简历对照片的惯例。
type PhotoPolicy string

const (
	PhotoRequired    PhotoPolicy = "required"
	PhotoRecommended PhotoPolicy = "recommended"
	PhotoOptional    PhotoPolicy = "optional"
	PhotoDiscouraged PhotoPolicy = "discouraged"
)

// Density 决定间距令牌的档位。
type Density string

const (
	DensityCompact     Density = "compact"
	DensityNormal      Density = "normal"
	DensityComfortable Density = "comfortable"
)

// DefaultRegion 是未知 region 的回退目标。
const DefaultRegion = "INTL"

// RegionProfile 是按国家/市场划分的版式惯例，只读。
type RegionProfile struct {
	ID          string       `json:"id"`
	Paper       geom.Paper   `json:"paper"`
	Margins     geom.Margins `json:"margins"`
	Photo       PhotoPolicy  `json:"photo"`
	Density     Density      `json:"density"`
	ATSFriendly bool         `json:"atsFriendly"`
	// NameFormat 是姓名模板，占位符取自 identity 字段。
	NameFormat string `json:"nameFormat"`
}

const (
	givenFirst  = "${firstName} ${lastName}"
	familyFirst = "${lastName} ${firstName}"
)

// DefaultRegions 返回内置 region 表的一份新拷贝。
func DefaultRegions() map[string]RegionProfile {
	a4, _ := geom.LookupPaper("A4")
	letter, _ := geom.LookupPaper("LETTER")
	return map[string]RegionProfile{
		"INTL": {ID: "INTL", Paper: a4, Margins: geom.Uniform(42), Photo: PhotoOptional, Density: DensityNormal, NameFormat: givenFirst},
		"US":   {ID: "US", Paper: letter, Margins: geom.Uniform(54), Photo: PhotoDiscouraged, Density: DensityCompact, ATSFriendly: true, NameFormat: givenFirst},
		"CA":   {ID: "CA", Paper: letter, Margins: geom.Uniform(54), Photo: PhotoDiscouraged, Density: DensityCompact, ATSFriendly: true, NameFormat: givenFirst},
		"GB":   {ID: "GB", Paper: a4, Margins: geom.Uniform(48), Photo: PhotoDiscouraged, Density: DensityNormal, ATSFriendly: true, NameFormat: givenFirst},
		"FR":   {ID: "FR", Paper: a4, Margins: geom.Margins{Top: 40, Right: 36, Bottom: 40, Left: 36}, Photo: PhotoRecommended, Density: DensityNormal, NameFormat: givenFirst},
		"DE":   {ID: "DE", Paper: a4, Margins: geom.Margins{Top: 48, Right: 42, Bottom: 48, Left: 56}, Photo: PhotoRecommended, Density: DensityNormal, NameFormat: givenFirst},
		"ES":   {ID: "ES", Paper: a4, Margins: geom.Uniform(40), Photo: PhotoRecommended, Density: DensityNormal, NameFormat: givenFirst},
		"IT":   {ID: "IT", Paper: a4, Margins: geom.Uniform(40), Photo: PhotoOptional, Density: DensityNormal, NameFormat: givenFirst},
		"NL":   {ID: "NL", Paper: a4, Margins: geom.Uniform(42), Photo: PhotoOptional, Density: DensityComfortable, NameFormat: givenFirst},
		"JP":   {ID: "JP", Paper: a4, Margins: geom.Uniform(36), Photo: PhotoRequired, Density: DensityCompact, NameFormat: familyFirst},
		"CN":   {ID: "CN", Paper: a4, Margins: geom.Uniform(36), Photo: PhotoRequired, Density: DensityCompact, NameFormat: familyFirst},
		"KR":   {ID: "KR", Paper: a4, Margins: geom.Uniform(36), Photo: PhotoRequired, Density: DensityCompact, NameFormat: familyFirst},
	}
}

// Spacing 是由 density 推导的间距令牌（pt）。
type Spacing struct {
	SectionGap float64 `json:"sectionGap"`
	ItemGap    float64 `json:"itemGap"`
	LineGap    float64 `json:"lineGap"`
	Padding    float64 `json:"padding"`
}

func spacingFor(d Density) Spacing {
	switch d {
	case DensityCompact:
		return Spacing{SectionGap: 14, ItemGap: 6, LineGap: 2, Padding: 0}
	case DensityComfortable:
		return Spacing{SectionGap: 22, ItemGap: 10, LineGap: 4, Padding: 4}
	default:
		return Spacing{SectionGap: 18, ItemGap: 8, LineGap: 3, Padding: 2}
	}
}
