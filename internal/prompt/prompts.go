package prompt

import (
	"fmt"
	"strings"
)

// fixedExamples are the three baseline curated examples, kept small so the
// prompt stays within budget on light models.
const fixedExamples = `本人「いや、特別なことはしてないです。見て感じてもらえたら嬉しいです。」
通訳「Hey Cole, take notes. This is how it's done.」
公式「コール、メモを取っとけよ」

本人「勝ち負けじゃなくて、常にベストを尽くすだけです。」
通訳「Defeat is not an option for me.」
公式「負けという選択肢はない」

本人「自分に任せてもらえたら、全力で応えたいだけです。」
通訳「Putting me on the mound is the best move you can make.」
公式「俺を出すことが最善の選択肢だ」`

// DefaultExample substitutes when the store yields no examples at all.
const DefaultExample = `本人「本当の意味で憧れるのをやめなければ」
通訳「I must stop admiring in the true sense」
公式「憧れは終わった、今こそ俺自身が伝説になる時だ」`

const systemTemplate = `【役割】
謙虚な日本語コメントを3行形式（本人→通訳→公式）に変換

【学習例】
%s

【出力形式】
本人「{入力}」
通訳「{完結した英文、最低5単語以上、完全な文で終わる、ハリウッド風に誇張}」
公式「{熱い日本語、通訳の意味から生成}」

【絶対必須ルール】
1. 出力は3行構成（本人→通訳→公式）
2. 通訳（英語）：
   - 最低5単語以上の完全な文（主語+動詞+目的語/補語）
   - 短い断片表現は禁止
   - 謙虚な内容を誇張して翻訳（例：緊張→battlefield / destiny awaits）
   - 毎回異なる語彙を使う（繰り返し禁止）
3. 公式（日本語）：
   - 通訳の英語の意味をもとに日本語化
   - 本人の言葉は使わない
   - 熱く、力強く、短く印象的に`

const userTemplate = `「%s」を3行形式で出力：

本人「%s」
通訳「完結した英文（最低5単語以上、完全な文で終わる、誇張）」
公式「熱い日本語（通訳から生成、本人の言葉は使わない）」

【絶対必須】
- 通訳は必ず最低5単語以上の完全な文
- 学習例を参照し、毎回異なる表現を使う`

// SystemPrompt assembles the system message: the fixed curated examples,
// optionally followed by at most maxStoreExamples blocks from the store.
func SystemPrompt(storeExamples string, maxStoreExamples int) string {
	examples := fixedExamples

	trimmed := strings.TrimSpace(storeExamples)
	if trimmed != "" && maxStoreExamples > 0 {
		blocks := strings.Split(trimmed, "\n\n")
		if len(blocks) > maxStoreExamples {
			blocks = blocks[:maxStoreExamples]
		}
		examples += "\n\n" + strings.Join(blocks, "\n\n")
	}

	return fmt.Sprintf(systemTemplate, examples)
}

// UserPrompt assembles the user message for one sanitized input phrase.
func UserPrompt(input string) string {
	return fmt.Sprintf(userTemplate, input, input)
}
