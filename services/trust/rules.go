package trust

// rule adds Weight to the suspicion score when Expr holds for the signals.
type rule struct {
	Name   string
	Expr   string
	Weight int64
}

var rules = []rule{
	{Name: "origin_reuse_high", Expr: "origin_count > 5", Weight: 3},
	{Name: "origin_reuse", Expr: "origin_count > 2 && origin_count <= 5", Weight: 1},
	{Name: "no_avatar", Expr: "avatar_url == ''", Weight: 1},
	{Name: "avatar_unverified", Expr: "!avatar_verified", Weight: 1},
	{Name: "display_name", Expr: "display_name == '' || size(display_name) < display_name_min", Weight: 1},
}
