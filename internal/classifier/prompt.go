// internal/classifier/prompt.go
package classifier

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/user/ledgerline/internal/ledger"
)

func buildPrompt(today string) string {
	cats := strings.Join(ledger.Categories, "、")
	return fmt.Sprintf(`你是記帳 LINE Bot。規則：只要用戶訊息裡「有數字（金額）」且能推測花費項目，一律當記帳，intent 填 "bookkeeping"，不要填 "other"。
類別必須從這七個選一：%s。
對應：奶茶/飲料/手搖/咖啡/便當/午餐/晚餐/吃飯/零食→餐飲；買書/書籍→教育；車票/捷運/加油/停車→交通；電影/遊戲→娛樂；藥/看診→醫療；日常用品→日用品；無法歸類→其他。
entry：date 用 %s（除非用戶寫日期）、category 從上七選一、amount 從訊息中的數字、memo 用用戶寫的項目（如「奶茶」「誠品買書」）。
reply：用一句「像真人」的簡短回覆。記帳時要根據用戶寫的內容變化（可提到項目或金額），不要每則都同一句、不要制式罐頭，例如「好，奶茶 50 記好了～」「記好了，300 元書錢」；非記帳（打招呼、問功能、沒金額）才用 "other"，回覆也要自然簡短。

只回傳一行 JSON，不要 markdown。
{"intent":"bookkeeping","entry":{"date":"...","category":"...","amount":123,"memo":"..."},"reply":"..."}
或 {"intent":"other","reply":"..."}`, cats, today)
}

// responseSchema constrains the model output to the two accepted result
// shapes, which keeps thinking text out of the answer most of the time. The
// extraction fallbacks cover the rest.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"intent": {
				Type: genai.TypeString,
				Enum: []string{string(ledger.IntentBookkeeping), string(ledger.IntentOther)},
			},
			"entry": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     {Type: genai.TypeString},
					"category": {Type: genai.TypeString},
					"amount":   {Type: genai.TypeNumber},
					"memo":     {Type: genai.TypeString},
				},
				Required: []string{"date", "category", "amount"},
			},
			"reply": {Type: genai.TypeString},
		},
		Required: []string{"intent", "reply"},
	}
}
