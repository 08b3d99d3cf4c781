package lookup

import (
	"strings"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/normalize"
)

// Publisher markers checked in precedence order. A Hong Kong marker beats a
// Taiwan marker beats a mainland marker; only then does language decide.
var (
	hkMarkers = []string{"香港", "hong kong", "hongkong"}
	twMarkers = []string{"台灣", "臺灣", "台北", "臺北", "taiwan", "taipei", "新北"}
	cnMarkers = []string{"中国", "中國", "北京", "上海", "广州", "天津", "人民文学", "人民文學", "商务印书馆"}
)

// InferRegion guesses the publishing region of an external record from its
// publisher string and language. The result is a display-ordering hint only.
// An empty result means unknown.
func InferRegion(publisher, language string) domain.Region {
	p := strings.ToLower(publisher)

	for _, m := range hkMarkers {
		if strings.Contains(p, m) {
			return domain.RegionHK
		}
	}
	for _, m := range twMarkers {
		if strings.Contains(p, m) {
			return domain.RegionTW
		}
	}
	for _, m := range cnMarkers {
		if strings.Contains(p, m) {
			return domain.RegionCN
		}
	}

	switch normalize.LanguageCode(language) {
	case "zh":
		return domain.RegionCN
	case "en":
		return domain.RegionEN
	case "":
		return ""
	default:
		return domain.RegionOther
	}
}
