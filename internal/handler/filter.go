package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/BuzzLyutic/tareas-api/internal/model"
)

// parseFilter разбирает query-параметры списка. Отсутствующий параметр - без ограничения
func parseFilter(r *http.Request) (model.TaskFilter, error) {
	q := r.URL.Query()
	var filter model.TaskFilter

	for _, p := range []struct {
		name string
		dst  **int64
	}{
		{"min_value", &filter.MinValue},
		{"max_value", &filter.MaxValue},
	} {
		if v := q.Get(p.name); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return filter, fmt.Errorf("invalid %s", p.name)
			}
			*p.dst = &parsed
		}
	}

	if v := q.Get("due_date"); v != "" {
		date, err := model.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.DueDate = &date
	}

	if v := q.Get("priority"); v != "" {
		priority, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid priority")
		}
		filter.Priority = &priority
	}

	if v, ok := q["category"]; ok && len(v) > 0 {
		category := v[0]
		filter.Category = &category
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"offset", &filter.Offset},
		{"limit", &filter.Limit},
	} {
		if v := q.Get(p.name); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return filter, fmt.Errorf("invalid %s", p.name)
			}
			// limit=0 неотличим от отсутствующего limit, поэтому явный limit не меньше 1
			if p.name == "limit" && parsed < 1 {
				return filter, fmt.Errorf("invalid limit: must be at least 1")
			}
			*p.dst = parsed
		}
	}

	return filter, nil
}
