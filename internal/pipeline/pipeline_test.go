package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goroku-app/goroku/internal/domain"
)

const validInterpreted = "Today was a really good day for all of us"

func TestProcess_WellFormedCompletion(t *testing.T) {
	raw := "本人「ほんまにええ試合やった」\n" +
		"通訳「" + validInterpreted + "」\n" +
		"公式「本当に良い試合でした」"

	got, err := Process(raw, DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, validInterpreted, got.Interpreted)
	assert.Equal(t, "本当に良い試合でした", got.Official)
}

func TestProcess_AlternateQuoteCharacters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "double width quotes",
			raw:  "通訳『" + validInterpreted + "』\n公式『全力を尽くしました』",
		},
		{
			name: "ascii quotes with whitespace",
			raw:  "通訳 \"" + validInterpreted + "\"\n公式 \"全力を尽くしました\"",
		},
		{
			name: "content spanning lines",
			raw:  "通訳「" + validInterpreted + "」\n公式「全力を\n尽くしました」",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Process(tt.raw, DefaultLimits())
			require.NoError(t, err)
			assert.Equal(t, validInterpreted, got.Interpreted)
			assert.NotEmpty(t, got.Official)
		})
	}
}

func TestProcess_OfficialFromRemainder(t *testing.T) {
	// No brackets around the official field at all. The remainder strategy
	// strips the labeled interpreted block and keeps what is left.
	raw := "通訳「" + validInterpreted + "」\n公式 明日も頑張ります"

	got, err := Process(raw, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "明日も頑張ります", got.Official)
}

func TestProcess_MissingInterpretedAccepted(t *testing.T) {
	raw := "公式「チーム一丸となって戦います」"

	got, err := Process(raw, DefaultLimits())
	require.NoError(t, err)

	assert.Empty(t, got.Interpreted)
	assert.Equal(t, "チーム一丸となって戦います", got.Official)
}

func TestProcess_InterpretedTokenFloor(t *testing.T) {
	tests := []struct {
		name        string
		interpreted string
		wantErr     bool
	}{
		{name: "four tokens rejected", interpreted: "It was so close", wantErr: true},
		{name: "five tokens accepted", interpreted: "It was so very close", wantErr: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "通訳「" + tt.interpreted + "」\n公式「接戦でした」"
			_, err := Process(raw, DefaultLimits())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsGenerationInvalid(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestProcess_EmptyCompletion(t *testing.T) {
	for _, raw := range []string{"", "   \n\t"} {
		_, err := Process(raw, DefaultLimits())
		require.Error(t, err)
		assert.True(t, domain.IsGenerationInvalid(err))
	}
}

func TestProcess_TruncatesOverlongFields(t *testing.T) {
	limits := DefaultLimits()
	raw := "通訳「" + strings.Repeat("x ", 120) + "」\n公式「" + strings.Repeat("あ", 300) + "」"

	got, err := Process(raw, limits)
	require.NoError(t, err)

	iLen := utf8.RuneCountInString(got.Interpreted)
	oLen := utf8.RuneCountInString(got.Official)
	assert.LessOrEqual(t, iLen, limits.InterpretedMax)
	assert.LessOrEqual(t, oLen, limits.OfficialMax)
	assert.LessOrEqual(t, iLen+oLen, limits.CombinedMax)
}

func TestOfficialFallbacks_Cascade(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "after second label",
			raw:  "本人「元気です」通訳「I feel great today honestly」調子は最高です",
			want: "調子は最高です",
		},
		{
			name: "joined tail lines",
			raw:  "一行目\n二行目\n公式 調子は最高です\nまた明日",
			want: "調子は最高です また明日",
		},
		{
			name: "label stripped raw",
			raw:  "公式",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, officialFallbacks(tt.raw, DefaultOfficialMax))
		})
	}
}

func TestTruncate_ProportionalSplit(t *testing.T) {
	limits := DefaultLimits()
	interpreted := strings.Repeat("a", 120)
	official := strings.Repeat("b", 150)

	gotI, gotO := Truncate(interpreted, official, limits)

	// Per-field caps bring 120/150 to 102/123, then the combined budget of
	// 210 splits proportionally over the 225-rune sum.
	assert.Equal(t, 95, utf8.RuneCountInString(gotI))
	assert.Equal(t, 114, utf8.RuneCountInString(gotO))
}

func TestTruncate_Idempotent(t *testing.T) {
	limits := DefaultLimits()
	interpreted := strings.Repeat("a", 120)
	official := strings.Repeat("あ", 150)

	i1, o1 := Truncate(interpreted, official, limits)
	i2, o2 := Truncate(i1, o1, limits)

	assert.Equal(t, i1, i2)
	assert.Equal(t, o1, o2)
}

func TestTruncate_CompliantPairUntouched(t *testing.T) {
	gotI, gotO := Truncate("short english", "短い日本語", DefaultLimits())
	assert.Equal(t, "short english", gotI)
	assert.Equal(t, "短い日本語", gotO)
}

func TestTruncateRunes_MultibyteBoundary(t *testing.T) {
	got := truncateRunes("あいうえお", 3)
	assert.Equal(t, "あいう", got)
	assert.True(t, utf8.ValidString(got))
}
