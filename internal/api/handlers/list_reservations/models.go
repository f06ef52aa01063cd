package list_reservations

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// ToServiceRequest разбирает query параметры from, to, status, limit, offset
func ToServiceRequest(query url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	if v := query.Get("from"); v != "" {
		from, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		req.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		req.To = &to
	}
	if v := query.Get("status"); v != "" {
		req.Status = &v
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		req.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		req.Offset = offset
	}

	return req, nil
}
