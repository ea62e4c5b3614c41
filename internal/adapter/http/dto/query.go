package dto

import (
	"strconv"

	"coins-wallet/pkg/apperror"
)

// PageQuery is the validated page/per_page pair of a listing request.
type PageQuery struct {
	Page    int
	PerPage int
}

// ParsePageQuery validates the raw query values. page is mandatory and must
// be an integer; per_page defaults to defaultSize and may not exceed maxSize.
// Out-of-range pages are left to the paginator, which clamps them.
func ParsePageQuery(rawPage, rawPerPage string, defaultSize, maxSize int) (PageQuery, error) {
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		return PageQuery{}, apperror.Validation("page parameter invalid")
	}

	perPage := defaultSize
	if rawPerPage != "" {
		perPage, err = strconv.Atoi(rawPerPage)
		if err != nil || perPage > maxSize {
			return PageQuery{}, apperror.Validation("per_page parameter invalid")
		}
	}
	return PageQuery{Page: page, PerPage: perPage}, nil
}
