package typeinfo

import (
	"testing"

	"github.com/golemcloud/golem-agent-sdk/wit"
)

func TestConsumesWireSlot(t *testing.T) {
	cases := []struct {
		name string
		info TypeInfo
		want bool
	}{
		{"analysed", Analysed(wit.StringType{}), true},
		{"unstructured-text", UnstructuredText(nil), true},
		{"unstructured-binary", UnstructuredBinary(nil), true},
		{"multimodal", Multimodal(nil), true},
		{"principal", Principal(), false},
		{"config", Config(), false},
	}
	for _, c := range cases {
		if got := c.info.ConsumesWireSlot(); got != c.want {
			t.Errorf("%s.ConsumesWireSlot() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestConstructorsSetKind(t *testing.T) {
	if k := Principal().Kind; k != KindPrincipal {
		t.Errorf("Principal().Kind = %s, want %s", k, KindPrincipal)
	}
	if k := Config().Kind; k != KindConfig {
		t.Errorf("Config().Kind = %s, want %s", k, KindConfig)
	}
	if k := Analysed(wit.BoolType{}).Kind; k != KindAnalysed {
		t.Errorf("Analysed(...).Kind = %s, want %s", k, KindAnalysed)
	}
}
