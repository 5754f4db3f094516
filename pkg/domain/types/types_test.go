package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

func TestTaxonomyStrings(t *testing.T) {
	gt.Value(t, types.Category("Wi-Fi").String()).Equal("Wi-Fi")
	gt.Value(t, types.Role("Φοιτητής").String()).Equal("Φοιτητής")
	gt.Value(t, types.Category("").String()).Equal("")
}
