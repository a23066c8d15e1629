package domain

import "strings"

// IconRule maps label words to an icon. A keyword of three or more letters
// matches as a word prefix ("payments" hits "payment"); shorter keywords
// must match a whole word.
type IconRule struct {
	Icon     string
	Keywords []string
}

// DefaultIcon is used when no rule matches
const DefaultIcon = "✨"

// IconRules are evaluated in order; the first match wins
var IconRules = []IconRule{
	{"🔐", []string{"auth", "login", "logout", "signin", "signup", "register", "session", "oauth", "password", "credential", "token"}},
	{"💳", []string{"payment", "stripe", "paypal", "billing", "checkout", "invoice", "subscription", "pricing", "refund"}},
	{"📊", []string{"dashboard", "overview"}},
	{"📁", []string{"storage", "upload", "bucket", "attachment", "document"}},
	{"🔔", []string{"notification", "notify", "alert", "push", "reminder"}},
	{"💬", []string{"message", "messaging", "chat", "inbox", "conversation", "comment", "thread"}},
	{"🔍", []string{"search", "finder", "lookup"}},
	{"👤", []string{"user", "profile", "account", "member", "team", "customer", "people"}},
	{"🛍️", []string{"product", "catalog", "inventory", "shop", "merchandise"}},
	{"📦", []string{"order", "cart", "shipping", "delivery", "fulfillment", "shipment"}},
	{"📈", []string{"analytics", "metric", "report", "stats", "statistic", "tracking", "insight"}},
	{"⚙️", []string{"setting", "preference", "configuration"}},
	{"📅", []string{"calendar", "schedule", "booking", "appointment", "event", "reservation"}},
	{"🖼️", []string{"media", "image", "video", "photo", "gallery", "audio"}},
	{"🗺️", []string{"map", "location", "geo", "address", "route"}},
	{"🛡️", []string{"admin", "moderation", "permission", "role", "audit"}},
	{"🤖", []string{"ai", "llm", "gpt", "openai", "embedding", "assistant", "agent"}},
}

// IconFor picks the icon for a domain label
func IconFor(label string) string {
	words := splitWords(label)
	for _, rule := range IconRules {
		for _, kw := range rule.Keywords {
			for _, w := range words {
				lw := strings.ToLower(w)
				if lw == kw || (len(kw) >= 3 && strings.HasPrefix(lw, kw)) {
					return rule.Icon
				}
			}
		}
	}
	return DefaultIcon
}
