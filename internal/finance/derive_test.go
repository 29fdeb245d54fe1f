package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ops-desk/internal/domain"
)

func TestDerive(t *testing.T) {
	got := Derive(domain.Money(4500000), domain.Money(270000), domain.Money(90000))
	assert.Equal(t, domain.Money(4140000), got.NetSale)
	assert.Equal(t, got.NetSale, got.TotalPayout)
}

func TestDeriveIsExactForCentValues(t *testing.T) {
	gross, err := domain.ParseMoney("0.30")
	assert.NoError(t, err)
	service, _ := domain.ParseMoney("0.10")
	gateway, _ := domain.ParseMoney("0.10")

	for i := 0; i < 1000; i++ {
		got := Derive(gross, service, gateway)
		assert.Equal(t, "0.10", got.NetSale.String())
	}

	var sum domain.Money
	for i := 0; i < 1000; i++ {
		sum += Derive(gross, service, gateway).NetSale
	}
	assert.Equal(t, "100.00", sum.String())
}

func TestDeriveAllowsFeesAboveGross(t *testing.T) {
	got := Derive(domain.Money(1000), domain.Money(800), domain.Money(500))
	assert.Equal(t, domain.Money(-300), got.NetSale)
	assert.Equal(t, domain.Money(-300), got.TotalPayout)
}
