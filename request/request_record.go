package request

type RequestRecorder func(requestRecordData *RequestRecordData)

type RequestRecordData struct {
	Method         string
	Url            string
	QueryParams    string
	RequestHeaders string
	HttpStatusCode int
	ContentType    string
	ResponseBody   string
	Error          string
	Duration       int64
}
