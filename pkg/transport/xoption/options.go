package xoption

// 预定义的传输调优选项，注册于默认池。集合是开放的，调用方可在运行时注册更多选项。
var (
	TCPNoDelay  = MustValueOf[bool]("TCP_NODELAY")
	KeepAlive   = MustValueOf[bool]("KEEP_ALIVE")
	SOReuseAddr = MustValueOf[bool]("SO_REUSEADDR")
	SOSndBuf    = MustValueOf[int]("SO_SNDBUF")
	SORcvBuf    = MustValueOf[int]("SO_RCVBUF")
	// SOLinger 单位为秒，负值表示关闭 linger。
	SOLinger  = MustValueOf[int]("SO_LINGER")
	SOBacklog = MustValueOf[int]("SO_BACKLOG")
	IPTOS     = MustValueOf[int]("IP_TOS")

	AllowHalfClosure   = MustValueOf[bool]("ALLOW_HALF_CLOSURE")
	PreferDirect       = MustValueOf[bool]("PREFER_DIRECT")
	UsePooledAllocator = MustValueOf[bool]("USE_POOLED_ALLOCATOR")

	WriteBufferHighWaterMark = MustValueOf[int]("WRITE_BUFFER_HIGH_WATER_MARK")
	WriteBufferLowWaterMark  = MustValueOf[int]("WRITE_BUFFER_LOW_WATER_MARK")
	// IORatio I/O 与业务处理的时间占比（1-100）。
	IORatio              = MustValueOf[int]("IO_RATIO")
	ConnectTimeoutMillis = MustValueOf[int]("CONNECT_TIMEOUT_MILLIS")
)
