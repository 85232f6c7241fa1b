package rewardconfig

import (
	"strconv"
	"strings"
)

var defaultAmounts = map[ActionType]int64{
	ActionView:             500,
	ActionLike:             2000,
	ActionComment:          3000,
	ActionShare:            2500,
	ActionUpload:           10000,
	ActionShortVideoUpload: 10000,
	ActionLongVideoUpload:  25000,
	ActionFirstUpload:      50000,
	ActionSignup:           100000,
	ActionWalletConnect:    50000,
}

var defaultLimits = map[LimitKey]int64{
	LimitView:       50,
	LimitLike:       30,
	LimitComment:    20,
	LimitShare:      10,
	LimitShortVideo: 5,
	LimitLongVideo:  3,
	LimitUploads:    5,
}

var defaultValidation = map[ValidationKey]int64{
	ViewCooldownSeconds:       60,
	CommentMinLength:          20,
	LongVideoThresholdSeconds: 180,
	GlobalDailyCap:            500000,
	AutoApproveThreshold:      3,
	AutoApproveEnabled:        1,
	DisplayNameMinLength:      3,
}

// translation maps a stored config key onto the slot it overrides.
type translation struct {
	action     ActionType
	limit      LimitKey
	validation ValidationKey
}

var translations = func() map[string]translation {
	t := map[string]translation{
		"view_reward":             {action: ActionView},
		"like_reward":             {action: ActionLike},
		"comment_reward":          {action: ActionComment},
		"share_reward":            {action: ActionShare},
		"upload_reward":           {action: ActionUpload},
		"short_video_reward":      {action: ActionShortVideoUpload},
		"long_video_reward":       {action: ActionLongVideoUpload},
		"first_upload_reward":     {action: ActionFirstUpload},
		"signup_reward":           {action: ActionSignup},
		"wallet_connect_reward":   {action: ActionWalletConnect},
		"daily_view_limit":        {limit: LimitView},
		"daily_like_limit":        {limit: LimitLike},
		"daily_comment_limit":     {limit: LimitComment},
		"daily_share_limit":       {limit: LimitShare},
		"daily_short_video_limit": {limit: LimitShortVideo},
		"daily_long_video_limit":  {limit: LimitLongVideo},
		"daily_upload_limit":      {limit: LimitUploads},
	}
	for k := range defaultValidation {
		t[string(k)] = translation{validation: k}
	}
	return t
}()

// Defaults returns a fresh copy of the compiled-in configuration.
func Defaults() Resolved {
	r := Resolved{
		Amounts:    make(map[ActionType]int64, len(defaultAmounts)),
		Limits:     make(map[LimitKey]int64, len(defaultLimits)),
		Validation: make(map[ValidationKey]int64, len(defaultValidation)),
	}
	for k, v := range defaultAmounts {
		r.Amounts[k] = v
	}
	for k, v := range defaultLimits {
		r.Limits[k] = v
	}
	for k, v := range defaultValidation {
		r.Validation[k] = v
	}
	return r
}

// DefaultEntries lists every recognized key with its default value.
func DefaultEntries() []*RewardConfigEntry {
	out := make([]*RewardConfigEntry, 0, len(translations))
	d := Defaults()
	for key, tr := range translations {
		var v int64
		switch {
		case tr.action != "":
			v = d.Amounts[tr.action]
		case tr.limit != "":
			v = d.Limits[tr.limit]
		default:
			v = d.Validation[tr.validation]
		}
		out = append(out, &RewardConfigEntry{Key: key, Value: strconv.FormatInt(v, 10)})
	}
	return out
}

// Merge applies recognized entries over r. Unknown keys and values that are not
// integers are skipped.
func Merge(r Resolved, entries []*RewardConfigEntry) Resolved {
	for _, e := range entries {
		if e == nil {
			continue
		}
		tr, ok := translations[e.Key]
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(e.Value), 10, 64)
		if err != nil {
			continue
		}
		switch {
		case tr.action != "":
			r.Amounts[tr.action] = v
		case tr.limit != "":
			r.Limits[tr.limit] = v
		default:
			r.Validation[tr.validation] = v
		}
	}
	return r
}
