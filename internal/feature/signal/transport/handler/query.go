package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/shared/tradingday"
)

// queryDate は YYYY-MM-DD のクエリパラメータを読みます。未指定の場合は nil です。
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	d, err := tradingday.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidArgument, key)
	}
	return &d, nil
}

// requiredDate は必須の日付パラメータを読みます。
func requiredDate(c *gin.Context, key string) (time.Time, error) {
	d, err := queryDate(c, key)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, key)
	}
	return *d, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, key)
	}
	return v, nil
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidArgument, key)
	}
	return v, nil
}

func queryBool(c *gin.Context, key string, def bool) (bool, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidArgument, key)
	}
	return v, nil
}
