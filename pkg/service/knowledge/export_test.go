package knowledge

var (
	ToPairs  = toPairs
	SplitGCS = splitGCS
)
