package text

import "strings"

// businessKeywords mark a fragment as an actionable business phrase.
var businessKeywords = []string{
	"申請", "承認", "精算", "支払", "請求", "依頼", "連絡", "通知", "報告",
	"提出", "作成", "更新", "確認", "送付", "共有", "手配", "渡して", "渡す",
	"対応", "処理",
}

// nonBusinessKeywords mark greetings and small talk.
var nonBusinessKeywords = []string{
	"おはよう", "こんにちは", "こんばんは", "お疲れ", "ご苦労", "失礼します",
	"よろしく", "天気", "暑い", "寒い", "元気", "調子", "最近", "良いですね",
	"ですね",
}

// triggerMarkers introduce a condition clause. 後 and 次第 absorb a
// trailing に when present.
var triggerMarkers = []string{"たら", "なら", "場合", "後", "次第"}

// compoundMarkers suggest the text describes more than one action.
var compoundMarkers = []string{
	"たら", "なら", "場合", "後", "次第",
	"そして", "また", "および", "及び",
}

// ContainsBusinessKeyword reports whether s contains any business keyword.
func ContainsBusinessKeyword(s string) bool {
	return containsAnyOf(s, businessKeywords)
}

// ContainsNonBusinessKeyword reports whether s contains any greeting or
// small-talk keyword.
func ContainsNonBusinessKeyword(s string) bool {
	return containsAnyOf(s, nonBusinessKeywords)
}

// ContainsTriggerMarker reports whether s contains any conditional marker.
func ContainsTriggerMarker(s string) bool {
	return containsAnyOf(s, triggerMarkers)
}

func containsAnyOf(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
