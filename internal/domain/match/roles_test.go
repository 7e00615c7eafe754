package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferRole_HighGPMWinsOverSupportItems(t *testing.T) {
	// Правило по темпу фарма стоит первым: кор даже с саппортским закупом.
	role := InferRole(RoleSignals{
		GPM:       480,
		Purchases: []string{"glimmer_cape", "force_staff"},
	})
	assert.Equal(t, RoleCore, role)
}

func TestInferRole_CoreItems(t *testing.T) {
	role := InferRole(RoleSignals{
		GPM:       380,
		Purchases: []string{"tango", "bkb", "wind_lace"},
	})
	assert.Equal(t, RoleCore, role)
}

func TestInferRole_SupportItems(t *testing.T) {
	role := InferRole(RoleSignals{
		GPM:       380,
		Purchases: []string{"ward_observer", "mekansm"},
	})
	assert.Equal(t, RoleSupport, role)
}

func TestInferRole_CoreItemsWinOverSupportItems(t *testing.T) {
	// Порядок правил: корный закуп проверяется раньше саппортского.
	role := InferRole(RoleSignals{
		GPM:       380,
		Purchases: []string{"mekansm", "radiance"},
	})
	assert.Equal(t, RoleCore, role)
}

func TestInferRole_LowGPM(t *testing.T) {
	role := InferRole(RoleSignals{GPM: 290})
	assert.Equal(t, RoleSupport, role)
}

func TestInferRole_UnknownGPMDefaultsToCore(t *testing.T) {
	// GPM 0 означает "неизвестно" и не срабатывает как низкий темп.
	assert.Equal(t, RoleCore, InferRole(RoleSignals{GPM: 0}))
}

func TestInferRole_MiddleGPMDefaultsToCore(t *testing.T) {
	assert.Equal(t, RoleCore, InferRole(RoleSignals{GPM: 390}))
}

func TestInferRoleWith_CustomRulesAreAdditive(t *testing.T) {
	rules := append([]RoleRule{
		{
			Name:    "always_support",
			Matches: func(RoleSignals) bool { return true },
			Role:    RoleSupport,
		},
	}, DefaultRoleRules()...)

	assert.Equal(t, RoleSupport, InferRoleWith(rules, RoleSignals{GPM: 700}))
}

func TestRoleNameRu(t *testing.T) {
	assert.Equal(t, "Кор", RoleCore.NameRu())
	assert.Equal(t, "Саппорт", RoleSupport.NameRu())
	assert.Equal(t, "—", RoleUnknown.NameRu())
}
