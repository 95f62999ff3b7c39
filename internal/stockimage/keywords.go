package stockimage

import (
	"image/color"
	"strings"

	"course-promo/internal/variant"
)

type keywordQuery struct {
	keyword string
	query   string
}

// searchQueries maps title keywords to English stock-photo queries. The first
// matching keyword wins, so more specific entries come before broad ones.
var searchQueries = []keywordQuery{
	// IT / digital
	{"AI", "artificial intelligence technology"},
	{"인공지능", "artificial intelligence"},
	{"프로그래밍", "programming code computer"},
	{"코딩", "coding laptop developer"},
	{"빅데이터", "data analytics technology"},
	{"클라우드", "cloud computing server"},
	{"웹", "web development design"},
	{"앱", "mobile app development"},
	{"디지털", "digital technology modern"},
	{"SW", "software development"},
	{"소프트웨어", "software development"},
	{"정보보안", "cybersecurity technology"},
	{"사이버보안", "cybersecurity"},
	{"블록체인", "blockchain technology"},
	{"메타버스", "virtual reality technology"},
	{"IoT", "internet of things smart"},
	{"사물인터넷", "internet of things"},
	{"로봇", "robotics automation"},
	{"3D프린팅", "3d printing manufacturing"},

	// drones
	{"드론", "drone aerial photography"},
	{"항공", "drone aerial landscape"},
	{"촬영", "camera photography professional"},

	// tourism / service
	{"관광가이드", "tour guide travel"},
	{"관광", "tourism travel beautiful destination"},
	{"여행", "travel adventure tourism"},
	{"호텔", "hotel hospitality luxury"},
	{"숙박", "hotel resort accommodation"},
	{"외식", "restaurant food service"},
	{"바리스타", "coffee barista cafe"},
	{"커피", "coffee roasting cafe"},
	{"조리", "cooking chef kitchen professional"},
	{"요리", "cooking chef culinary"},
	{"제과제빵", "bakery pastry chef"},
	{"베이커리", "bakery bread artisan"},
	{"컨벤션", "convention conference business"},
	{"카지노", "casino gaming entertainment"},

	// agriculture / environment
	{"스마트팜", "smart farm agriculture technology"},
	{"농업", "agriculture farming field"},
	{"수산", "fishing ocean marine"},
	{"해양", "ocean marine coastal"},
	{"환경", "environment nature green"},
	{"신재생에너지", "renewable energy solar wind"},
	{"태양광", "solar panel energy"},
	{"전기차", "electric vehicle charging"},

	// construction / manufacturing
	{"건축", "architecture construction building"},
	{"건설", "construction site building"},
	{"인테리어", "interior design modern"},
	{"용접", "welding manufacturing industrial"},
	{"기계", "mechanical engineering factory"},
	{"자동차", "automotive car maintenance"},
	{"전기", "electrical engineering wiring"},
	{"설비", "industrial facility maintenance"},
	{"배관", "plumbing pipe industrial"},

	// beauty / fashion
	{"미용", "beauty salon hairstyle"},
	{"헤어", "hairstyling salon professional"},
	{"네일", "nail art beauty salon"},
	{"메이크업", "makeup beauty cosmetics"},
	{"피부관리", "skincare beauty spa"},
	{"패션", "fashion design clothing"},

	// design / content
	{"디자인", "graphic design creative workspace"},
	{"영상", "video production filming"},
	{"콘텐츠", "content creation digital media"},
	{"SNS", "social media marketing"},
	{"마케팅", "digital marketing business"},
	{"광고", "advertising marketing creative"},
	{"유튜브", "youtube video creator"},
	{"편집", "video editing production"},

	// care / welfare
	{"간호", "nursing healthcare hospital"},
	{"간병", "elderly care nursing"},
	{"요양", "elderly care facility"},
	{"사회복지", "social welfare community"},
	{"보육", "childcare education"},
	{"상담", "counseling therapy office"},

	// office / business
	{"회계", "accounting finance business"},
	{"경영", "business management office"},
	{"무역", "international trade business"},
	{"물류", "logistics warehouse supply chain"},
	{"유통", "retail distribution business"},

	// Jeju
	{"제주", "Jeju island nature"},
	{"감귤", "citrus orange farm"},
	{"해녀", "ocean diving traditional"},
	{"올레", "nature trail hiking path"},
}

var fallbackQueries = []string{
	"professional training education",
	"career development learning",
	"modern classroom workshop",
	"technology education future",
}

// SearchQuery turns a course title into a stock-photo query.
func SearchQuery(title string) string {
	for _, kq := range searchQueries {
		if strings.Contains(title, kq.keyword) {
			return kq.query
		}
	}
	return variant.Pick(title, fallbackQueries...)
}

type gradientTheme struct {
	keyword  string
	from, to color.RGBA
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

var gradientThemes = []gradientTheme{
	{"IT", rgb(30, 60, 114), rgb(42, 82, 152)},
	{"드론", rgb(44, 62, 80), rgb(52, 152, 219)},
	{"관광", rgb(22, 160, 133), rgb(44, 62, 80)},
	{"바리스타", rgb(62, 39, 35), rgb(141, 110, 99)},
	{"커피", rgb(62, 39, 35), rgb(141, 110, 99)},
	{"디자인", rgb(142, 68, 173), rgb(44, 62, 80)},
	{"미용", rgb(232, 67, 147), rgb(200, 80, 120)},
	{"건설", rgb(44, 62, 80), rgb(127, 140, 141)},
	{"농업", rgb(39, 174, 96), rgb(46, 64, 83)},
	{"요리", rgb(211, 84, 0), rgb(243, 156, 18)},
	{"의료", rgb(41, 128, 185), rgb(109, 213, 250)},
}

var defaultTheme = gradientTheme{from: rgb(27, 79, 114), to: rgb(46, 134, 193)}

func themeFor(title string) gradientTheme {
	for _, th := range gradientThemes {
		if strings.Contains(title, th.keyword) {
			return th
		}
	}
	return defaultTheme
}
