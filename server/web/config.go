package web

type Config struct {
	Port       int
	Address    string
	Loglevel   string
	Input      string
	Format     string
	Capacity   int
	Prime      bool
	Hasher     string
	Duplicates string
	MaxConns   int
}
