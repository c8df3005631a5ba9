package model

// CanonicalPair 把无向用户对规范化为 (low, high) 存储方向。
// 全部无向查询/写入都必须先经过这里，消除按两种列顺序 OR 查询的歧义。
func CanonicalPair(a, b string) (low, high string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// PairOther 返回无向对中相对 user 的另一方。
// user 不在该对中时返回空串，由调用方决定如何处理。
func PairOther(low, high, user string) string {
	switch user {
	case low:
		return high
	case high:
		return low
	default:
		return ""
	}
}
