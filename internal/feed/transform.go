// 包 feed：实时数据查看器；推送通道、按需拉取与渲染步骤，渲染所需的纯数据变换与展示副作用分离
package feed

import "fmt"

// AwaitingText：尚未收到任何数据时内容区的文字
const AwaitingText = "awaiting data..."

// Value：一次拉取得到的数据点；Value 为自纪元起的秒数，Contents 为不透明的 HTML 片段
type Value struct {
	Value    float64 `json:"value"`
	Contents string  `json:"contents"`
}

// 文档注释：一次渲染的展示内容
// 背景：由 Compute 纯函数得出，可脱离终端单测；Summary 与 Delta 拼接为摘要区文字。
type Update struct {
	Value    Value
	Summary  string
	Delta    string
	First    bool
	Contents string
}

// Message：摘要区完整文字
func (u Update) Message() string { return u.Summary + u.Delta }

// 文档注释：由上一数据点与当前数据点计算展示内容
// 返回：当前值缺失或与上一值逐字段相等时返回 false，调用方不应重绘。
// 约束：差值带符号并保留三位小数；无上一值时标注为首个数据点。
func Compute(prev, cur *Value) (Update, bool) {
	if cur == nil {
		return Update{}, false
	}
	if prev != nil && *prev == *cur {
		return Update{}, false
	}
	u := Update{
		Value:    *cur,
		Summary:  fmt.Sprintf("%.3fs since the Epoch", cur.Value),
		Contents: cur.Contents,
	}
	if prev == nil {
		u.First = true
		u.Delta = " (first data point)"
	} else {
		u.Delta = fmt.Sprintf(" (%+.3fs since last update)", cur.Value-prev.Value)
	}
	return u, true
}
