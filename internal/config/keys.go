package config

const (
	KeyConfigFile          = "drata_config_file"
	KeyAPIKey              = "drata_api_key"
	KeyRegion              = "drata_region"
	KeyBaseURL             = "drata_base_url"
	KeyTimeout             = "drata_timeout"
	KeyPageSize            = "drata_page_size"
	KeyMaxPages            = "drata_max_pages"
	KeyListItemCap         = "list_item_cap"
	KeyResponseTokenBudget = "response_token_budget"
	KeyLogLevel            = "log_level"
	KeyTransport           = "transport"
	KeyHost                = "host"
	KeyPort                = "port"
	KeyEndpointPath        = "endpoint_path"
)
