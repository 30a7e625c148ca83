package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billing/internal/domain"
)

func TestComputePayment_VAT(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		hasVAT    bool
		exempt    bool
		wantVAT   string
		wantTotal string
	}{
		{name: "non-exempt", hasVAT: true, exempt: false, wantVAT: "200", wantTotal: "1200"},
		{name: "exempt", hasVAT: true, exempt: true, wantVAT: "0", wantTotal: "1000"},
		{name: "no vat", hasVAT: false, exempt: false, wantVAT: "0", wantTotal: "1000"},
		{name: "no vat exempt flag set", hasVAT: false, exempt: true, wantVAT: "0", wantTotal: "1000"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := ComputePayment(PaymentInput{
				Amount:      dec("1000"),
				HasVAT:      tc.hasVAT,
				IsVATExempt: tc.exempt,
			}, nil)
			require.NoError(t, err)
			assertDecimal(t, tc.wantVAT, out.VATAmount)
			assertDecimal(t, tc.wantTotal, out.TotalAmount)
			assertDecimal(t, "1000", out.NetAmount)
			assertDecimal(t, "0", out.CommissionAmount)
			assert.Equal(t, CommissionSourceNone, out.CommissionSource)
		})
	}
}

func TestComputePayment_TierCommission(t *testing.T) {
	t.Parallel()

	out, err := ComputePayment(PaymentInput{
		Amount:        dec("2000"),
		HasCommission: true,
		HasVAT:        true,
	}, twoPercentTiers())
	require.NoError(t, err)

	assertDecimal(t, "60", out.CommissionAmount)
	assertDecimal(t, "1940", out.NetAmount)
	assertDecimal(t, "400", out.VATAmount)
	// Total is independent of commission.
	assertDecimal(t, "2400", out.TotalAmount)
	assert.Equal(t, CommissionSourceTier, out.CommissionSource)
	require.NotNil(t, out.Tier)
	assertDecimal(t, "1000", out.Tier.MinAmount)
}

func TestComputePayment_CommissionIgnoredWhenDisabled(t *testing.T) {
	t.Parallel()

	out, err := ComputePayment(PaymentInput{
		Amount:           dec("500"),
		HasCommission:    false,
		CommissionAmount: decPtr("99"),
		CommissionRate:   decPtr("-10"),
	}, twoPercentTiers())
	require.NoError(t, err)
	assertDecimal(t, "0", out.CommissionAmount)
	assertDecimal(t, "500", out.NetAmount)
	assert.Nil(t, out.Tier)
}

func TestComputePayment_OverridePrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		in         PaymentInput
		wantFee    string
		wantSource CommissionSource
	}{
		{
			name:       "explicit amount beats tier",
			in:         PaymentInput{Amount: dec("500"), HasCommission: true, CommissionAmount: decPtr("40")},
			wantFee:    "40",
			wantSource: CommissionSourceOverride,
		},
		{
			name:       "explicit zero amount beats tier",
			in:         PaymentInput{Amount: dec("500"), HasCommission: true, CommissionAmount: decPtr("0")},
			wantFee:    "0",
			wantSource: CommissionSourceOverride,
		},
		{
			name: "explicit amount beats explicit rate",
			in: PaymentInput{
				Amount: dec("500"), HasCommission: true,
				CommissionAmount: decPtr("40"), CommissionRate: decPtr("10"),
			},
			wantFee:    "40",
			wantSource: CommissionSourceOverride,
		},
		{
			name:       "explicit rate beats tier",
			in:         PaymentInput{Amount: dec("500"), HasCommission: true, CommissionRate: decPtr("10")},
			wantFee:    "50",
			wantSource: CommissionSourceRate,
		},
		{
			name:       "tier when nothing supplied",
			in:         PaymentInput{Amount: dec("500"), HasCommission: true},
			wantFee:    "25",
			wantSource: CommissionSourceTier,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := ComputePayment(tc.in, twoPercentTiers())
			require.NoError(t, err)
			assertDecimal(t, tc.wantFee, out.CommissionAmount)
			assertDecimal(t, tc.in.Amount.Sub(dec(tc.wantFee)).String(), out.NetAmount)
			assert.Equal(t, tc.wantSource, out.CommissionSource)
		})
	}
}

func TestComputePayment_UnmatchedTierIsZeroCommission(t *testing.T) {
	t.Parallel()

	tiers := []domain.CommissionTier{percentTier("100", nil, "5")}

	for _, schedule := range [][]domain.CommissionTier{nil, tiers} {
		out, err := ComputePayment(PaymentInput{Amount: dec("50"), HasCommission: true}, schedule)
		require.NoError(t, err)
		assertDecimal(t, "0", out.CommissionAmount)
		assertDecimal(t, "50", out.NetAmount)
		assert.Equal(t, CommissionSourceUnmatched, out.CommissionSource)
	}
}

func TestComputePayment_MalformedInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		in        PaymentInput
		wantField string
	}{
		{name: "negative amount", in: PaymentInput{Amount: dec("-1")}, wantField: "amount"},
		{
			name:      "negative override",
			in:        PaymentInput{Amount: dec("10"), HasCommission: true, CommissionAmount: decPtr("-1")},
			wantField: "commissionAmount",
		},
		{
			name:      "rate above 100",
			in:        PaymentInput{Amount: dec("10"), HasCommission: true, CommissionRate: decPtr("101")},
			wantField: "commissionRate",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ComputePayment(tc.in, nil)
			var cerr *ComputationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.wantField, cerr.Field)
		})
	}
}

func TestComputePayment_Deterministic(t *testing.T) {
	t.Parallel()

	in := PaymentInput{Amount: dec("1234.56"), HasCommission: true, HasVAT: true}
	tiers := twoPercentTiers()

	first, err := ComputePayment(in, tiers)
	require.NoError(t, err)
	second, err := ComputePayment(in, tiers)
	require.NoError(t, err)

	assert.Equal(t, first.CommissionAmount.String(), second.CommissionAmount.String())
	assert.Equal(t, first.NetAmount.String(), second.NetAmount.String())
	assert.Equal(t, first.VATAmount.String(), second.VATAmount.String())
	assert.Equal(t, first.TotalAmount.String(), second.TotalAmount.String())
	assert.Equal(t, first.CommissionSource, second.CommissionSource)
}

func TestNewCalculator(t *testing.T) {
	t.Parallel()

	_, err := NewCalculator(dec("120"))
	var cerr *ComputationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "vatRate", cerr.Field)

	calc, err := NewCalculator(dec("18"))
	require.NoError(t, err)
	assertDecimal(t, "18", calc.VATRate())

	out, err := calc.Compute(PaymentInput{Amount: dec("100"), HasVAT: true}, nil)
	require.NoError(t, err)
	assertDecimal(t, "18", out.VATAmount)
	assertDecimal(t, "118", out.TotalAmount)
}
