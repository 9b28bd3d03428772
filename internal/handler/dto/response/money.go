package response

import (
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// Amounts leave the API as fixed two-decimal strings.
var copyOpts = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: decimal.Decimal{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return Money(src.(decimal.Decimal)), nil
			},
		},
	},
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func copyInto(dst, src any) error {
	return copier.CopyWithOption(dst, src, copyOpts)
}
