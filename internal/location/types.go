// 包 location：国家 → 省/州 → 城市三级联动选择；负责远端列表拉取、结果判定与级联状态维护
package location

import "errors"

// Level：联动层级，国家为根，城市为叶
type Level int

const (
	Country Level = iota
	State
	City
)

// Levels：按父到子顺序列出全部层级
var Levels = [...]Level{Country, State, City}

// PendingLabel：请求返回前占位项的文字
const PendingLabel = "Please wait.."

var (
	// ErrListDisabled：列表未启用（父级无具体选择或加载未成功），不得触发请求
	ErrListDisabled = errors.New("location: list is disabled")
	// ErrUnknownOption：所选标识不在当前列表中
	ErrUnknownOption = errors.New("location: unknown option")
	// ErrStale：响应返回时已有更新的选择，结果被丢弃
	ErrStale = errors.New("location: response superseded by a newer selection")
)

func (l Level) String() string {
	switch l {
	case Country:
		return "country"
	case State:
		return "state"
	case City:
		return "city"
	}
	return "unknown"
}

// Child：返回直接子层级；城市无子层级
func (l Level) Child() (Level, bool) {
	if l < City {
		return l + 1, true
	}
	return l, false
}

// SentinelLabel：首项（“未选择”）的常态文字
func (l Level) SentinelLabel() string {
	switch l {
	case Country:
		return "Select Country"
	case State:
		return "Select State"
	default:
		return "Select City"
	}
}

// requestType：type 查询参数的取值
func (l Level) requestType() string {
	switch l {
	case Country:
		return "getCountries"
	case State:
		return "getStates"
	default:
		return "getCities"
	}
}

// parentParam：父级标识的查询参数名；国家列表无父级
func (l Level) parentParam() string {
	switch l {
	case State:
		return "countryId"
	case City:
		return "stateId"
	}
	return ""
}

func (l Level) valid() bool { return l >= Country && l <= City }

// Option：列表中的一项；ID 在列表内唯一，插入顺序即展示顺序
type Option struct {
	ID    string
	Label string
}

// 文档注释：列表拉取结果（带标签的联合类型）
// 背景：远端以 tp 区分成功与失败；此处收敛为 Success 与 Failure 两种取值，调用方按类型分支。
type Result interface {
	result()
}

// Success：tp == 1，携带按远端顺序排列的选项
type Success struct {
	Options []Option
}

// Failure：tp 为其他值，携带远端原样返回的提示文字
type Failure struct {
	Message string
}

func (Success) result() {}
func (Failure) result() {}
