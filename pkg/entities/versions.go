package entities

// Version - версия игры
type Version struct {
	Code string
	Name string
}

var versions = []Version{
	{Code: "ds", Name: "Don't Starve"},
	{Code: "sw", Name: "Shipwrecked"},
	{Code: "ham", Name: "Hamlet"},
	{Code: "dst", Name: "Don't Starve Together"},
}

// Versions возвращает версии в порядке меню
func Versions() []Version {
	return append([]Version(nil), versions...)
}

// VersionName возвращает название версии по коду
func VersionName(code string) (string, bool) {
	for _, v := range versions {
		if v.Code == code {
			return v.Name, true
		}
	}
	return "", false
}
