package agent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwhyun/finbot/internal/products"
)

// queryWords are stripped from a lookup query to isolate the entity name:
// "삼성전자 주가 알려줘" becomes "삼성전자".
var queryWords = []string{
	"현재가", "주가", "정보", "알려줘", "알려 줘", "얼마야", "얼마예요", "얼마", "좀",
}

// stockLookup resolves one named security and formats its snapshot record.
func stockLookup(ctx context.Context, store *products.SecurityStore, query string) string {
	name := query
	for _, w := range queryWords {
		name = strings.ReplaceAll(name, w, "")
	}
	name = strings.TrimRight(strings.TrimSpace(name), "?!.")

	sec, err := store.Lookup(ctx, name)
	if errors.Is(err, products.ErrNotFound) {
		return fmt.Sprintf("'%s'에 대한 정보를 찾을 수 없습니다.", name)
	}
	if err != nil {
		return fmt.Sprintf("'%s' 조회 중 문제가 발생했습니다. 잠시 후 다시 시도해주세요.", name)
	}

	unit := "원"
	if sec.Market == products.MarketOverseas {
		unit = "달러"
	}
	return fmt.Sprintf("%s의 정보는 다음과 같습니다: 현재가 %s%s, PBR %s, PER %s, EPS %s",
		sec.Name, formatPrice(sec.Price), unit,
		formatMetric(sec.PBR), formatMetric(sec.PER), formatMetric(sec.EPS))
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMetric(v sql.NullFloat64) string {
	if !v.Valid {
		return "정보 없음"
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
