package database

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// jdbcParams JDBC/Navicat 参数 -> go-sql-driver 参数；空串表示直接丢弃
var jdbcParams = map[string]string{
	"characterEncoding":    "charset",
	"serverTimezone":       "loc",
	"useUnicode":           "",
	"zeroDateTimeBehavior": "",
}

var sslToTLS = map[string]string{
	"true":        "true",
	"1":           "true",
	"skip-verify": "skip-verify",
	"preferred":   "preferred",
}

// normalizeMySQLDSN 把 mysql:// 或 jdbc:mysql:// URL 转为 user:pass@tcp(host)/db?...；
// 原生 DSN 原样返回
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return strings.TrimSpace(input)
	}
	u, err := url.Parse(in)
	if err != nil {
		return in
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	q := u.Query()
	if v := q.Get("user"); v != "" {
		user = v
	}
	if v := q.Get("password"); v != "" {
		pass = v
	}
	q.Del("user")
	q.Del("password")
	if userOverride != "" {
		user = userOverride
	}
	if passOverride != "" {
		pass = passOverride
	}

	for from, to := range jdbcParams {
		v := q.Get(from)
		q.Del(from)
		if v != "" && to != "" && q.Get(to) == "" {
			q.Set(to, v)
		}
	}
	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		tls, ok := sslToTLS[v]
		if !ok {
			tls = "false"
		}
		q.Set("tls", tls)
		q.Del("useSSL")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}

	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	if cred != "" {
		cred += "@"
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", cred, u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		dsn += "?" + enc
	}
	return dsn
}

var (
	urlPassword = regexp.MustCompile(`^([a-z]+://[^:/@]+:)[^@]*(@)`)
	kvPassword  = regexp.MustCompile(`(password=)\S+`)
	sqlPassword = regexp.MustCompile(`^([^:/@]+:)[^@]*(@tcp\()`)
)

// maskDSN 日志里隐藏密码
func maskDSN(dsn string) string {
	dsn = urlPassword.ReplaceAllString(dsn, "${1}****${2}")
	dsn = sqlPassword.ReplaceAllString(dsn, "${1}****${2}")
	return kvPassword.ReplaceAllString(dsn, "${1}****")
}
