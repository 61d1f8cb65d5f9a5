package httptransport

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "请求参数格式错误"
	MsgInvalidPaging  = "分页参数无效"

	// 认证相关
	MsgInvalidEmail    = "邮箱格式无效"
	MsgCodeRateLimited = "验证码发送过于频繁，请稍后再试"
	MsgCodeSendFailed  = "验证码发送失败，请稍后重试"
	MsgCodeInvalid     = "验证码错误或已过期"
	MsgLoginFailed     = "登录失败，请稍后重试"

	// 项目相关
	MsgProjectNotFound     = "项目不存在"
	MsgProjectCreateFailed = "创建项目失败"
	MsgProjectListFailed   = "获取项目列表失败"
	MsgProjectGetFailed    = "获取项目详情失败"
	MsgProjectUpdateFailed = "更新项目失败"
	MsgProjectDeleteFailed = "删除项目失败"
	MsgInvalidStatus       = "状态取值无效"
	MsgNoFieldsToUpdate    = "没有需要更新的字段"

	// 意向相关
	MsgIntentNotFound     = "合作意向不存在"
	MsgIntentExists       = "已向该项目提交过合作意向"
	MsgProjectNotActive   = "该项目当前不接收合作意向"
	MsgOwnProject         = "不能向自己的项目提交合作意向"
	MsgIntentSubmitFailed = "提交合作意向失败"
	MsgIntentListFailed   = "获取意向列表失败"
	MsgIntentUpdateFailed = "更新意向状态失败"

	// 进度相关
	MsgProgressNotActive  = "已暂停或关闭的项目不能添加进度"
	MsgProgressAddFailed  = "添加项目进度失败"
	MsgProgressListFailed = "获取项目进度失败"

	// 通知相关
	MsgNotificationNotFound   = "通知不存在"
	MsgNotificationListFailed = "获取通知列表失败"
	MsgMarkReadFailed         = "标记已读失败"

	// 用户相关
	MsgUserNotFound        = "用户不存在"
	MsgProfileGetFailed    = "获取用户资料失败"
	MsgProfileUpdateFailed = "更新用户资料失败"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
