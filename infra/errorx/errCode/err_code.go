package errCode

// 业务错误码, 各模块共用
type Code int

const (
	OK                   Code = iota // "OK"
	INVALID_VALUE                    // "INVALID_VALUE"
	EMPTY_VALUE                      // "EMPTY_VALUE"
	INVALID_CONFIG                   // "INVALID_CONFIG"
	NUMERICAL_DEGENERACY             // "NUMERICAL_DEGENERACY"
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case INVALID_VALUE:
		return "INVALID_VALUE"
	case EMPTY_VALUE:
		return "EMPTY_VALUE"
	case INVALID_CONFIG:
		return "INVALID_CONFIG"
	case NUMERICAL_DEGENERACY:
		return "NUMERICAL_DEGENERACY"
	default:
		return "UNKNOWN"
	}
}
