// Package analyze loads compiled protobuf descriptor sets and ordered type lists.
//
// It reads a FileDescriptorSet (protoc --descriptor_set_out) and indexes every
// message and enum, nested ones included, under a package-relative qualified
// name such as "Player" or "Player.Item".
//
// Key types:
//   - TypeDescriptor: one message or enum with its qualified name
//   - DescriptorGraph: every declared type, in declaration order, plus the
//     packages needed to resolve field type references
package analyze
