package rates

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/ledger"
	"github.com/adnanrafiq/finledger/store"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(*testing.T, *File)
	}{
		{
			name:  "valid file",
			input: "USD: \"280.0000\"\nGBP: \"355.25\"\n",
			check: func(t *testing.T, f *File) {
				rates := f.Rates()
				assert.Equal(t, 2, len(rates))
				assert.True(t, rates["USD"].Equal(decimal.RequireFromString("280")))
				assert.True(t, rates["GBP"].Equal(decimal.RequireFromString("355.25")))
			},
		},
		{
			name:  "unquoted numbers",
			input: "USD: 280.5\n",
			check: func(t *testing.T, f *File) {
				assert.True(t, f.Rates()["USD"].Equal(decimal.RequireFromString("280.5")))
			},
		},
		{
			name:  "empty file",
			input: "",
			check: func(t *testing.T, f *File) {
				assert.Equal(t, 0, len(f.Rates()))
			},
		},
		{
			name:    "malformed yaml",
			input:   "USD: [broken\n",
			wantErr: true,
		},
		{
			name:    "non-numeric rate",
			input:   "USD: cheap\n",
			wantErr: true,
		},
		{
			name:    "zero rate",
			input:   "USD: 0\n",
			wantErr: true,
		},
		{
			name:    "negative rate",
			input:   "USD: -280\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("USD: 280\n"), 0o644))

	f, err := Load(path)
	assert.NoError(t, err)
	assert.True(t, f.Rates()["USD"].Equal(decimal.RequireFromString("280")))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := ledger.NewService(st)
	_, err = svc.CreateCurrency(ctx, "PKR", "Pakistani Rupee", decimal.NewFromInt(1))
	assert.NoError(t, err)
	_, err = svc.CreateCurrency(ctx, "USD", "US Dollar", decimal.RequireFromString("280"))
	assert.NoError(t, err)
	_, err = svc.CreateCurrency(ctx, "GBP", "British Pound", decimal.RequireFromString("350"))
	assert.NoError(t, err)

	f, err := Parse([]byte("USD: 285\nGBP: 350\n"))
	assert.NoError(t, err)

	// GBP already matches, so only USD changes.
	changed, err := Apply(ctx, svc, f)
	assert.NoError(t, err)
	sort.Strings(changed)
	assert.Equal(t, []string{"USD"}, changed)

	rate, err := svc.Rate(ctx, "USD")
	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("285")))

	// Re-applying the same file is a no-op.
	changed, err = Apply(ctx, svc, f)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(changed))
}

func TestApplyUnknownCurrency(t *testing.T) {
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := ledger.NewService(st)

	f, err := Parse([]byte("XYZ: 42\n"))
	assert.NoError(t, err)

	_, err = Apply(ctx, svc, f)
	assert.Error(t, err)
}
