package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/infigaming-com/currency-converter/converter"
	"go.uber.org/zap"
)

const (
	ConverterPath = "/currency_converter"

	AmountParam         = "amount"
	InputCurrencyParam  = "input_currency"
	OutputCurrencyParam = "output_currency"
)

const wrongParameters = "Wrong parameters"

type Converter interface {
	Convert(ctx context.Context, req converter.Request) *converter.Result
}

// ConverterRoutes registers GET ConverterPath on the engine.
func ConverterRoutes(lg *zap.Logger, conv Converter) func(*gin.Engine) {
	return func(engine *gin.Engine) {
		engine.GET(ConverterPath, ConverterHandler(lg, conv))
	}
}

// ConverterHandler answers a conversion query. Two or three parameters are
// expected; amount and input_currency are mandatory. Conversion failures are
// part of a 200 response body, only malformed queries get a 400.
func ConverterHandler(lg *zap.Logger, conv Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := parseConvertRequest(c)
		if !ok {
			lg.Debug("rejected conversion query", zap.String("query", c.Request.URL.RawQuery))
			c.JSON(http.StatusBadRequest, gin.H{"error": wrongParameters})
			return
		}

		result := conv.Convert(c.Request.Context(), req)
		c.JSON(http.StatusOK, result)
	}
}

func parseConvertRequest(c *gin.Context) (converter.Request, bool) {
	query := c.Request.URL.Query()
	if len(query) < 2 || len(query) > 3 {
		return converter.Request{}, false
	}

	rawAmount, ok := c.GetQuery(AmountParam)
	if !ok {
		return converter.Request{}, false
	}
	input, ok := c.GetQuery(InputCurrencyParam)
	if !ok {
		return converter.Request{}, false
	}

	req := converter.Request{
		Amount:        ParseAmount(rawAmount),
		InputCurrency: input,
	}
	if output, ok := c.GetQuery(OutputCurrencyParam); ok {
		req.OutputCurrency = &output
	}
	return req, true
}

// ParseAmount returns a float64 when raw is numeric and raw itself otherwise,
// leaving the rejection of text amounts to the converter.
func ParseAmount(raw string) any {
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return amount
}
