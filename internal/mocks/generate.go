package mocks

//go:generate mockery --name ProvisionStore --srcpkg github.com/loglens-io/loglens/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name EventWriter --srcpkg github.com/loglens-io/loglens/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name ReportStore --srcpkg github.com/loglens-io/loglens/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name Sink --srcpkg github.com/loglens-io/loglens/internal/mirror --output ./mirror --outpkg mirrormocks --with-expecter
//go:generate mockery --name Notifier --srcpkg github.com/loglens-io/loglens/internal/alert --output ./alert --outpkg alertmocks --with-expecter
