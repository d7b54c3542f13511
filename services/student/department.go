package student

// Department code tables. The left column is the short colloquial name,
// the codes are the 2-digit department numbers embedded in student ids,
// with the law and sociology groups carrying a third disambiguating
// digit. Loaded once, never mutated.

var DepartmentCode = map[string]string{
	"法律": "71",
	"法學": "712",
	"司法": "714",
	"財法": "716",
	"公行": "72",
	"經濟": "73",
	"社學": "742",
	"社工": "744",
	"財政": "75",
	"不動": "76",
	"會計": "77",
	"統計": "78",
	"企管": "79",
	"金融": "80",
	"中文": "81",
	"應外": "82",
	"歷史": "83",
	"休運": "84",
	"資工": "85",
	"通訊": "86",
	"電機": "87",
}

var FullDepartmentCode = map[string]string{
	"法律學系":       "71",
	"法學組":        "712",
	"司法組":        "714",
	"財經法組":       "716",
	"公共行政暨政策學系":  "72",
	"經濟學系":       "73",
	"社會學系":       "742",
	"社會工作學系":     "744",
	"財政學系":       "75",
	"不動產與城鄉環境學系": "76",
	"會計學系":       "77",
	"統計學系":       "78",
	"企業管理學系":     "79",
	"金融與合作經營學系":  "80",
	"中國文學系":      "81",
	"應用外語學系":     "82",
	"歷史學系":       "83",
	"休閒運動管理學系":   "84",
	"資訊工程學系":     "85",
	"通訊工程學系":     "86",
	"電機工程學系":     "87",
}

// DepartmentName and FullDepartmentName are the inverse lookups,
// code -> name.
var DepartmentName = map[string]string{}
var FullDepartmentName = map[string]string{}

// AllDepartmentCodes keeps the table's insertion order; the renewal
// task walks departments in this order.
var AllDepartmentCodes = []string{
	"71", "712", "714", "716", "72", "73", "742", "744", "75", "76",
	"77", "78", "79", "80", "81", "82", "83", "84", "85", "86", "87",
}

func init() {
	for name, code := range DepartmentCode {
		DepartmentName[code] = name
	}
	for name, code := range FullDepartmentCode {
		FullDepartmentName[code] = name
	}
}

// extraDigitPrefixes lists the 2-digit prefixes whose full department
// code needs a third digit from the student id to disambiguate the
// group (law and the old combined sociology department).
var extraDigitPrefixes = map[string]bool{
	"71": true,
	"74": true,
}

// shortFormExtraDigitPrefix is the single prefix whose short-form name
// also needs the third digit (社學 vs 社工).
const shortFormExtraDigitPrefix = "74"

// compositeDepartment is a department-with-subtrack code whose full
// rendering spans two lines: the parent department, then the group.
type compositeDepartment struct {
	Parent string
	Track  string
}

var compositeDepartments = map[string]compositeDepartment{
	"712": {Parent: "法律學系", Track: "法學組"},
	"714": {Parent: "法律學系", Track: "司法組"},
	"716": {Parent: "法律學系", Track: "財經法組"},
	"742": {Parent: "社會學系", Track: "社會學組"},
	"744": {Parent: "社會學系", Track: "社會工作組"},
}
