package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/checkcheck/backend/core"
	"github.com/checkcheck/backend/core/datetime"
)

func fieldErr(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}

// queryDate reads a YYYY-MM-DD query param, defaulting to today.
func queryDate(ctx echo.Context, name string) (datetime.Date, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return datetime.Today(), nil
	}
	d, err := datetime.ParseDate(val)
	if err != nil {
		return datetime.Date{}, fieldErr(name, err.Error())
	}
	return d, nil
}

// queryMonth reads a YYYY-MM query param, defaulting to the current month.
func queryMonth(ctx echo.Context, name string) (datetime.YearMonth, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return datetime.Today().Month(), nil
	}
	ym, err := datetime.ParseYearMonth(val)
	if err != nil {
		return datetime.YearMonth{}, fieldErr(name, err.Error())
	}
	return ym, nil
}

// queryInt reads an optional non-negative integer query param.
func queryInt(ctx echo.Context, name string) (int, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fieldErr(name, "must be a positive integer")
	}
	return i, nil
}
