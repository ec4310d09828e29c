package brute

// DefaultCredentials 内置弱口令组合，按命中概率排序
// 爆破时按序尝试，命中即停，顺序就是优先级
var DefaultCredentials = []Auth{
	{Username: "admin", Password: "admin"},
	{Username: "admin", Password: "password"},
	{Username: "admin", Password: "123456"},
	{Username: "admin", Password: "admin123"},
	{Username: "administrator", Password: "administrator"},
	{Username: "administrator", Password: "password"},
	{Username: "root", Password: "root"},
	{Username: "root", Password: "password"},
	{Username: "root", Password: "toor"},
	{Username: "root", Password: "123456"},
	{Username: "user", Password: "user"},
	{Username: "user", Password: "password"},
	{Username: "guest", Password: "guest"},
	{Username: "guest", Password: ""},
	{Username: "test", Password: "test"},
	{Username: "demo", Password: "demo"},
	{Username: "service", Password: "service"},
	{Username: "oracle", Password: "oracle"},
	{Username: "postgres", Password: "postgres"},
	{Username: "mysql", Password: "mysql"},
	{Username: "ftp", Password: "ftp"},
	{Username: "anonymous", Password: "anonymous"},
	{Username: "anonymous", Password: ""},
}

// DictManager 字典管理器
type DictManager struct {
	credentials []Auth
}

func NewDictManager() *DictManager {
	return &DictManager{credentials: DefaultCredentials}
}

// Credentials 返回有序凭据列表，调用方不应修改
func (d *DictManager) Credentials() []Auth {
	return d.credentials
}

// AccessLevelFor 根据服务和命中的用户名推断访问级别
// 各协议的判定口径不同：
//   - ssh/telnet/mysql: root 账户给 root 级
//   - postgresql: postgres 超级用户给 admin 级
//   - 其余: admin/administrator 给 admin 级，默认 user 级
func AccessLevelFor(service, username string) string {
	switch service {
	case "ssh", "telnet":
		if username == "root" {
			return "root"
		}
		if username == "admin" || username == "administrator" {
			return "admin"
		}
	case "mysql":
		if username == "root" {
			return "root"
		}
	case "postgresql":
		if username == "postgres" {
			return "admin"
		}
	default:
		if username == "admin" || username == "administrator" {
			return "admin"
		}
	}
	return "user"
}
