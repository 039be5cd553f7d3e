package ports

type LoggerPort interface {
	Debug(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string, err error)
	Close()
}
