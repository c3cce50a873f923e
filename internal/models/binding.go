package models

// ServerBinding describes a peer instance of the log platform.
type ServerBinding struct {
	ID          string `json:"id" yaml:"id" msgpack:"id"`
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Host        string `json:"host" yaml:"host" msgpack:"host"`
	Port        int    `json:"port" yaml:"port" msgpack:"port"`
	Virtual     string `json:"virtual,omitempty" yaml:"virtual,omitempty" msgpack:"virtual,omitempty"` // reverse-proxy path, replaces the port
	Description string `json:"description,omitempty" yaml:"description,omitempty" msgpack:"description,omitempty"`
}

// AppBinding maps an application to its log directory and file prefix.
type AppBinding struct {
	ID        string `json:"id" yaml:"id" msgpack:"id"`
	Name      string `json:"name" yaml:"name" msgpack:"name"`
	LogPath   string `json:"logPath" yaml:"logPath" msgpack:"logPath"`
	LogPrefix string `json:"logPrefix" yaml:"logPrefix" msgpack:"logPrefix"`
	ServerID  string `json:"serverId,omitempty" yaml:"serverId,omitempty" msgpack:"serverId,omitempty"`
}
